package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type venueRepository interface {
	ListByTest(ctx context.Context, testID string) ([]models.Venue, error)
	Create(ctx context.Context, venue *models.Venue) error
}

type venueTestRepository interface {
	FindByID(ctx context.Context, id string) (*models.Test, error)
}

// CreateVenueRequest holds payload for adding a venue to a test.
type CreateVenueRequest struct {
	TestID   string `json:"test_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

// VenueService handles venue use-cases.
type VenueService struct {
	repo      venueRepository
	tests     venueTestRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewVenueService constructs the venue service.
func NewVenueService(repo venueRepository, tests venueTestRepository, validate *validator.Validate, logger *zap.Logger) *VenueService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VenueService{repo: repo, tests: tests, validator: validate, logger: logger}
}

// ListByTest returns the test's venues in creation order.
func (s *VenueService) ListByTest(ctx context.Context, testID string) ([]models.Venue, error) {
	if testID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "test id is required")
	}
	venues, err := s.repo.ListByTest(ctx, testID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list venues")
	}
	return venues, nil
}

// Create adds a venue to an existing test. Capacity must be at least one seat.
func (s *VenueService) Create(ctx context.Context, req CreateVenueRequest) (*models.Venue, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid venue payload")
	}

	if _, err := s.tests.FindByID(ctx, req.TestID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "test not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test")
	}

	venue := &models.Venue{
		TestID:   req.TestID,
		Name:     req.Name,
		Capacity: req.Capacity,
	}
	if err := s.repo.Create(ctx, venue); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create venue")
	}
	s.logger.Sugar().Infow("venue created", "venue_id", venue.ID, "test_id", venue.TestID, "capacity", venue.Capacity)
	return venue, nil
}
