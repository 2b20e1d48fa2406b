package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type mockAttendanceApplicantRepo struct {
	applicants map[string]models.Applicant
}

func (m *mockAttendanceApplicantRepo) FindByRollNumber(ctx context.Context, testID, rollNumber string) (*models.Applicant, error) {
	if a, ok := m.applicants[testID+"/"+rollNumber]; ok {
		return &a, nil
	}
	return nil, sql.ErrNoRows
}

type mockAttendanceRepo struct {
	marked map[string]bool
	last   *models.AttendanceRecord
}

func (m *mockAttendanceRepo) Mark(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	if m.marked == nil {
		m.marked = make(map[string]bool)
	}
	key := record.ApplicantID + "/" + record.TestID
	if m.marked[key] {
		return false, nil
	}
	m.marked[key] = true
	m.last = record
	return true, nil
}

func (m *mockAttendanceRepo) ListByTest(ctx context.Context, testID string) ([]models.AttendanceDetail, error) {
	return nil, nil
}

func (m *mockAttendanceRepo) CountByTest(ctx context.Context, testID string) (int, error) {
	return len(m.marked), nil
}

func newAttendanceFixture() (*AttendanceService, *mockAttendanceRepo) {
	applicants := &mockAttendanceApplicantRepo{applicants: map[string]models.Applicant{
		"test-1/R100": {ID: "app-1", TestID: "test-1", RollNumber: "R100", Name: "Known Applicant"},
	}}
	records := &mockAttendanceRepo{}
	return NewAttendanceService(applicants, records, nil), records
}

func TestMarkAttendanceSuccess(t *testing.T) {
	svc, records := newAttendanceFixture()

	result, err := svc.Mark(context.Background(), "test-1", "R100", "user-9")
	require.NoError(t, err)

	assert.Equal(t, "app-1", result.Record.ApplicantID)
	assert.Equal(t, models.AttendanceStatusPresent, result.Record.Status)
	assert.Equal(t, "R100", result.RollNumber)
	assert.Equal(t, "Known Applicant", result.ApplicantName)
	require.NotNil(t, records.last.MarkedBy)
	assert.Equal(t, "user-9", *records.last.MarkedBy)
}

func TestMarkAttendanceTrimsScannerInput(t *testing.T) {
	svc, _ := newAttendanceFixture()

	result, err := svc.Mark(context.Background(), "test-1", "  R100\n", "")
	require.NoError(t, err)
	assert.Equal(t, "app-1", result.Record.ApplicantID)
}

func TestMarkAttendanceUnknownRollNumber(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), "test-1", "NOPE", "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestMarkAttendanceSecondMarkRejected(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), "test-1", "R100", "")
	require.NoError(t, err)

	_, err = svc.Mark(context.Background(), "test-1", "R100", "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyMarked))
}

func TestMarkAttendanceRequiresRollNumber(t *testing.T) {
	svc, _ := newAttendanceFixture()

	_, err := svc.Mark(context.Background(), "test-1", "   ", "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
