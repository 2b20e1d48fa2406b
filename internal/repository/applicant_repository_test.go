package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/placement-ops/console-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestApplicantRepositoryUpsertBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicantRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applicants")).
		WillReturnResult(sqlmock.NewResult(0, 2))

	email := "a@example.com"
	rows := []models.ApplicantUpsert{
		{TestID: "test-1", RollNumber: "R1", Name: "One", Email: &email},
		{TestID: "test-1", RollNumber: "R2", Name: "Two"},
	}
	affected, err := repo.UpsertBatch(context.Background(), rows)
	require.NoError(t, err)
	require.Equal(t, 2, affected)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantRepositoryUpsertBatchEmpty(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicantRepository(db)
	affected, err := repo.UpsertBatch(context.Background(), nil)
	require.NoError(t, err)
	require.Zero(t, affected)
}

func TestApplicantRepositoryFindByRollNumber(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicantRepository(db)
	rows := sqlmock.NewRows([]string{"id", "test_id", "roll_number", "name", "email", "phone", "venue_id", "seat_number", "created_at"}).
		AddRow("app-1", "test-1", "R1", "One", nil, nil, nil, nil, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, test_id, roll_number")).
		WithArgs("test-1", "R1").
		WillReturnRows(rows)

	applicant, err := repo.FindByRollNumber(context.Background(), "test-1", "R1")
	require.NoError(t, err)
	require.Equal(t, "app-1", applicant.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantRepositoryBeginAllocationLocked(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicantRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_xact_lock")).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_xact_lock"}).AddRow(false))
	mock.ExpectRollback()

	_, err := repo.BeginAllocation(context.Background(), "test-1")
	require.ErrorIs(t, err, ErrAllocationLocked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicantRepositoryAllocationSessionApplySeat(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewApplicantRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT pg_try_advisory_xact_lock")).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_xact_lock"}).AddRow(true))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applicants SET venue_id")).
		WithArgs("app-1", "v1", "3").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applicants SET venue_id")).
		WithArgs("app-2", nil, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session, err := repo.BeginAllocation(context.Background(), "test-1")
	require.NoError(t, err)

	venue := "v1"
	seat := "3"
	require.NoError(t, session.ApplySeat(context.Background(), models.SeatAssignment{ApplicantID: "app-1", VenueID: &venue, SeatNumber: &seat}))
	require.NoError(t, session.ApplySeat(context.Background(), models.SeatAssignment{ApplicantID: "app-2"}))
	require.NoError(t, session.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
