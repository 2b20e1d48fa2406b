package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/placement-ops/console-api/internal/models"
)

func TestAttendanceRepositoryMarkInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AttendanceRecord{ApplicantID: "app-1", TestID: "test-1"}
	inserted, err := repo.Mark(context.Background(), record)
	require.NoError(t, err)
	require.True(t, inserted)

	// Defaults are filled in before the insert.
	require.NotEmpty(t, record.ID)
	require.Equal(t, models.AttendanceStatusPresent, record.Status)
	require.False(t, record.MarkedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMarkConflictReturnsFalse(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)

	// ON CONFLICT DO NOTHING reports zero affected rows for a duplicate pair.
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendance")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Mark(context.Background(), &models.AttendanceRecord{ApplicantID: "app-1", TestID: "test-1"})
	require.NoError(t, err)
	require.False(t, inserted)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListByTest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	rows := sqlmock.NewRows([]string{"id", "applicant_id", "test_id", "status", "marked_by", "marked_at", "roll_number", "applicant_name"}).
		AddRow("att-1", "app-1", "test-1", "present", nil, time.Now(), "R1", "One")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT att.id, att.applicant_id")).
		WithArgs("test-1").
		WillReturnRows(rows)

	records, err := repo.ListByTest(context.Background(), "test-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "R1", records[0].RollNumber)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryCountByTest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewAttendanceRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM attendance")).
		WithArgs("test-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountByTest(context.Background(), "test-1")
	require.NoError(t, err)
	require.Equal(t, 42, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
