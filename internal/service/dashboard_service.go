package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

const dashboardStatsKey = "dash:stats"

type dashboardRepository interface {
	Stats(ctx context.Context) (*models.DashboardStats, error)
}

// DashboardService serves the landing page counts with a short Redis cache in
// front of the aggregate query.
type DashboardService struct {
	repo     dashboardRepository
	cache    *redis.Client
	metrics  *MetricsService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the dashboard service. A nil cache client
// disables caching.
func NewDashboardService(repo dashboardRepository, cache *redis.Client, metrics *MetricsService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, cache: cache, metrics: metrics, cacheTTL: cacheTTL, logger: logger}
}

// Stats returns entity counts, preferring the cached copy.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	if cached := s.tryCache(ctx); cached != nil {
		return cached, nil
	}

	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dashboard stats")
	}
	s.persistCache(ctx, stats)
	return stats, nil
}

func (s *DashboardService) tryCache(ctx context.Context) *models.DashboardStats {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, dashboardStatsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("dashboard cache read failed", zap.Error(err))
		}
		s.metrics.RecordCacheOperation(false)
		return nil
	}
	var stats models.DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		s.metrics.RecordCacheOperation(false)
		return nil
	}
	s.metrics.RecordCacheOperation(true)
	return &stats
}

func (s *DashboardService) persistCache(ctx context.Context, stats *models.DashboardStats) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, dashboardStatsKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Warn("dashboard cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached counts. Called after writes that change them.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, dashboardStatsKey).Err(); err != nil {
		s.logger.Warn("dashboard cache invalidation failed", zap.Error(err))
	}
}
