package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type cycleRepository interface {
	ListByCampaign(ctx context.Context, campaignID string) ([]models.Cycle, error)
	FindByID(ctx context.Context, id string) (*models.Cycle, error)
	Create(ctx context.Context, cycle *models.Cycle) error
}

type cycleCampaignRepository interface {
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
}

// CreateCycleRequest holds payload for creating cycles.
type CreateCycleRequest struct {
	CampaignID  string    `json:"campaign_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	CycleNumber int       `json:"cycle_number" validate:"required,min=1"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// CycleService handles cycle use-cases.
type CycleService struct {
	repo      cycleRepository
	campaigns cycleCampaignRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCycleService constructs the cycle service.
func NewCycleService(repo cycleRepository, campaigns cycleCampaignRepository, validate *validator.Validate, logger *zap.Logger) *CycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CycleService{repo: repo, campaigns: campaigns, validator: validate, logger: logger}
}

// ListByCampaign returns all cycles under a campaign in cycle number order.
func (s *CycleService) ListByCampaign(ctx context.Context, campaignID string) ([]models.Cycle, error) {
	if campaignID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "campaign id is required")
	}
	cycles, err := s.repo.ListByCampaign(ctx, campaignID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list cycles")
	}
	return cycles, nil
}

// Get returns one cycle.
func (s *CycleService) Get(ctx context.Context, id string) (*models.Cycle, error) {
	cycle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}
	return cycle, nil
}

// Create registers a new cycle under an existing campaign.
func (s *CycleService) Create(ctx context.Context, req CreateCycleRequest) (*models.Cycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid cycle payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}

	if _, err := s.campaigns.FindByID(ctx, req.CampaignID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}

	cycle := &models.Cycle{
		CampaignID:  req.CampaignID,
		Name:        req.Name,
		CycleNumber: req.CycleNumber,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	}
	if err := s.repo.Create(ctx, cycle); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create cycle")
	}
	s.logger.Sugar().Infow("cycle created", "cycle_id", cycle.ID, "campaign_id", cycle.CampaignID)
	return cycle, nil
}
