package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type attendanceApplicantRepository interface {
	FindByRollNumber(ctx context.Context, testID, rollNumber string) (*models.Applicant, error)
}

type attendanceRepository interface {
	Mark(ctx context.Context, record *models.AttendanceRecord) (bool, error)
	ListByTest(ctx context.Context, testID string) ([]models.AttendanceDetail, error)
	CountByTest(ctx context.Context, testID string) (int, error)
}

// AttendanceService marks applicants present exactly once per test.
type AttendanceService struct {
	applicants attendanceApplicantRepository
	records    attendanceRepository
	logger     *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(applicants attendanceApplicantRepository, records attendanceRepository, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{applicants: applicants, records: records, logger: logger}
}

// Mark records a "present" attendance for the applicant identified by roll
// number within the test. The roll number arrives either typed or as decoded
// scanner text; both paths land here. A second mark for the same applicant
// returns ErrAlreadyMarked via the storage-level uniqueness conflict, so
// near-simultaneous scans cannot double-insert.
func (s *AttendanceService) Mark(ctx context.Context, testID, rollNumber, markedBy string) (*models.MarkAttendanceResult, error) {
	rollNumber = strings.TrimSpace(rollNumber)
	if testID == "" || rollNumber == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "test and roll number are required")
	}

	applicant, err := s.applicants.FindByRollNumber(ctx, testID, rollNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no applicant with this roll number for the selected test")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up applicant")
	}

	record := &models.AttendanceRecord{
		ApplicantID: applicant.ID,
		TestID:      testID,
		Status:      models.AttendanceStatusPresent,
	}
	if markedBy != "" {
		record.MarkedBy = &markedBy
	}

	inserted, err := s.records.Mark(ctx, record)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	if !inserted {
		return nil, appErrors.Clone(appErrors.ErrAlreadyMarked, "attendance already recorded for this applicant")
	}

	s.logger.Sugar().Infow("attendance marked",
		"test_id", testID,
		"roll_number", rollNumber,
		"applicant_id", applicant.ID)
	return &models.MarkAttendanceResult{
		Record:        *record,
		RollNumber:    applicant.RollNumber,
		ApplicantName: applicant.Name,
	}, nil
}

// ListByTest returns the attendance sheet for a test.
func (s *AttendanceService) ListByTest(ctx context.Context, testID string) ([]models.AttendanceDetail, error) {
	records, err := s.records.ListByTest(ctx, testID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// CountByTest returns how many applicants are marked present for a test.
func (s *AttendanceService) CountByTest(ctx context.Context, testID string) (int, error) {
	count, err := s.records.CountByTest(ctx, testID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count attendance")
	}
	return count, nil
}
