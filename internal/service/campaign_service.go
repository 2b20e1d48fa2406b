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

type campaignRepository interface {
	List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, int, error)
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	Create(ctx context.Context, campaign *models.Campaign) error
	Delete(ctx context.Context, id string) error
}

// CreateCampaignRequest holds payload for creating campaigns.
type CreateCampaignRequest struct {
	Name        string    `json:"name" validate:"required"`
	Description string    `json:"description"`
	StartDate   time.Time `json:"start_date" validate:"required"`
	EndDate     time.Time `json:"end_date" validate:"required"`
}

// CampaignService handles campaign use-cases.
type CampaignService struct {
	repo      campaignRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCampaignService constructs the campaign service.
func NewCampaignService(repo campaignRepository, validate *validator.Validate, logger *zap.Logger) *CampaignService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CampaignService{repo: repo, validator: validate, logger: logger}
}

// List returns campaigns and pagination metadata.
func (s *CampaignService) List(ctx context.Context, filter models.CampaignFilter) ([]models.Campaign, *models.Pagination, error) {
	campaigns, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list campaigns")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return campaigns, pagination, nil
}

// Get returns one campaign.
func (s *CampaignService) Get(ctx context.Context, id string) (*models.Campaign, error) {
	campaign, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "campaign not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load campaign")
	}
	return campaign, nil
}

// Create registers a new campaign.
func (s *CampaignService) Create(ctx context.Context, req CreateCampaignRequest, createdBy string) (*models.Campaign, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid campaign payload")
	}
	if req.EndDate.Before(req.StartDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end date must not be before start date")
	}

	campaign := &models.Campaign{
		Name:      req.Name,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}
	if req.Description != "" {
		campaign.Description = &req.Description
	}
	if createdBy != "" {
		campaign.CreatedBy = &createdBy
	}
	if err := s.repo.Create(ctx, campaign); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create campaign")
	}
	s.logger.Sugar().Infow("campaign created", "campaign_id", campaign.ID, "name", campaign.Name)
	return campaign, nil
}

// Delete removes a campaign and, through cascading foreign keys, everything
// under it.
func (s *CampaignService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete campaign")
	}
	s.logger.Sugar().Infow("campaign deleted", "campaign_id", id)
	return nil
}
