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

type testRepository interface {
	ListByCycle(ctx context.Context, cycleID string) ([]models.TestDetail, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Test, error)
	FindByID(ctx context.Context, id string) (*models.Test, error)
	Create(ctx context.Context, test *models.Test) error
}

type testCycleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Cycle, error)
}

// CreateTestRequest holds payload for scheduling tests. TestTime is a 24h
// "HH:MM" wall-clock string, kept separate from the date as the schedule is
// venue-local.
type CreateTestRequest struct {
	CycleID         string    `json:"cycle_id" validate:"required"`
	Name            string    `json:"name" validate:"required"`
	TestDate        time.Time `json:"test_date" validate:"required"`
	TestTime        string    `json:"test_time" validate:"required,datetime=15:04"`
	DurationMinutes int       `json:"duration_minutes" validate:"required,min=1"`
}

// TestService handles test scheduling use-cases.
type TestService struct {
	repo      testRepository
	cycles    testCycleRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTestService constructs the test service.
func NewTestService(repo testRepository, cycles testCycleRepository, validate *validator.Validate, logger *zap.Logger) *TestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestService{repo: repo, cycles: cycles, validator: validate, logger: logger}
}

// ListByCycle returns tests for a cycle with roster and venue counts.
func (s *TestService) ListByCycle(ctx context.Context, cycleID string) ([]models.TestDetail, error) {
	if cycleID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cycle id is required")
	}
	tests, err := s.repo.ListByCycle(ctx, cycleID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tests")
	}
	return tests, nil
}

// ListUpcoming returns today's and future tests, soonest first.
func (s *TestService) ListUpcoming(ctx context.Context) ([]models.Test, error) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	tests, err := s.repo.ListUpcoming(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list upcoming tests")
	}
	return tests, nil
}

// Get returns one test.
func (s *TestService) Get(ctx context.Context, id string) (*models.Test, error) {
	test, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "test not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test")
	}
	return test, nil
}

// Create schedules a new test under an existing cycle. The campaign reference
// is copied from the cycle so listings do not need an extra join.
func (s *TestService) Create(ctx context.Context, req CreateTestRequest, createdBy string) (*models.Test, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test payload")
	}

	cycle, err := s.cycles.FindByID(ctx, req.CycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "cycle not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load cycle")
	}

	test := &models.Test{
		CampaignID:      cycle.CampaignID,
		CycleID:         cycle.ID,
		Name:            req.Name,
		TestDate:        req.TestDate,
		TestTime:        req.TestTime,
		DurationMinutes: req.DurationMinutes,
	}
	if createdBy != "" {
		test.CreatedBy = &createdBy
	}
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create test")
	}
	s.logger.Sugar().Infow("test created", "test_id", test.ID, "cycle_id", test.CycleID)
	return test, nil
}
