package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type applicantRepository interface {
	List(ctx context.Context, filter models.ApplicantFilter) ([]models.Applicant, int, error)
	ListSeated(ctx context.Context, testID string) ([]models.SeatedApplicant, error)
}

// ApplicantService exposes read access to a test's roster and seating.
type ApplicantService struct {
	repo   applicantRepository
	logger *zap.Logger
}

// NewApplicantService constructs the applicant service.
func NewApplicantService(repo applicantRepository, logger *zap.Logger) *ApplicantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicantService{repo: repo, logger: logger}
}

// List returns applicants for a test and pagination metadata.
func (s *ApplicantService) List(ctx context.Context, filter models.ApplicantFilter) ([]models.Applicant, *models.Pagination, error) {
	if filter.TestID == "" {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "test id is required")
	}
	applicants, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applicants")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 50
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return applicants, pagination, nil
}

// ListSeated returns the assigned seating plan in venue then seat order.
func (s *ApplicantService) ListSeated(ctx context.Context, testID string) ([]models.SeatedApplicant, error) {
	if testID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "test id is required")
	}
	seated, err := s.repo.ListSeated(ctx, testID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list seating")
	}
	return seated, nil
}
