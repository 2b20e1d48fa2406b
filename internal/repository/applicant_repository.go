package repository

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// ErrAllocationLocked signals that another allocation run holds the advisory
// lock for the same test.
var ErrAllocationLocked = errors.New("allocation lock not acquired")

// ApplicantRepository manages persistence for applicant records.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository constructs an ApplicantRepository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// List returns applicants for a test matching the provided filters.
func (r *ApplicantRepository) List(ctx context.Context, filter models.ApplicantFilter) ([]models.Applicant, int, error) {
	conditions := []string{"test_id = $1"}
	args := []interface{}{filter.TestID}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(roll_number) LIKE $%d OR LOWER(name) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"roll_number": "roll_number",
		"name":        "name",
		"created_at":  "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "roll_number"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, test_id, roll_number, name, email, phone, venue_id, seat_number, created_at
        FROM applicants WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, where, column, order, size, offset)

	var applicants []models.Applicant
	if err := r.db.SelectContext(ctx, &applicants, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applicants: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM applicants WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applicants: %w", err)
	}
	return applicants, total, nil
}

// FindByRollNumber fetches one applicant by its (test, roll number) key.
func (r *ApplicantRepository) FindByRollNumber(ctx context.Context, testID, rollNumber string) (*models.Applicant, error) {
	const query = `SELECT id, test_id, roll_number, name, email, phone, venue_id, seat_number, created_at
        FROM applicants WHERE test_id = $1 AND roll_number = $2`
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, testID, rollNumber); err != nil {
		return nil, err
	}
	return &applicant, nil
}

// UpsertBatch writes all roster rows in a single statement keyed on
// (test_id, roll_number). Existing applicants keep their ID and any seat
// assignment; name, email and phone are refreshed. Returns the number of rows
// written.
func (r *ApplicantRepository) UpsertBatch(ctx context.Context, rows []models.ApplicantUpsert) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	placeholders := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*7)
	for i, row := range rows {
		base := i * 7
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7))
		args = append(args, uuid.NewString(), row.TestID, row.RollNumber, row.Name, row.Email, row.Phone, now)
	}

	query := fmt.Sprintf(`INSERT INTO applicants (id, test_id, roll_number, name, email, phone, created_at)
        VALUES %s
        ON CONFLICT (test_id, roll_number)
        DO UPDATE SET name = EXCLUDED.name, email = EXCLUDED.email, phone = EXCLUDED.phone`,
		strings.Join(placeholders, ", "))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upsert applicants: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return len(rows), nil
	}
	return int(affected), nil
}

// ListSeated returns assigned applicants joined with their venue name,
// ordered for export.
func (r *ApplicantRepository) ListSeated(ctx context.Context, testID string) ([]models.SeatedApplicant, error) {
	const query = `SELECT a.roll_number, a.name, v.name AS venue_name, a.seat_number
        FROM applicants a
        JOIN venues v ON v.id = a.venue_id
        WHERE a.test_id = $1 AND a.venue_id IS NOT NULL
        ORDER BY v.created_at ASC, v.id ASC, LENGTH(a.seat_number) ASC, a.seat_number ASC`
	var seated []models.SeatedApplicant
	if err := r.db.SelectContext(ctx, &seated, query, testID); err != nil {
		return nil, fmt.Errorf("list seated applicants: %w", err)
	}
	return seated, nil
}

// AllocationSession is the locked unit of work for one allocation run. The
// whole read-shuffle-assign-write sequence happens inside it so the advisory
// lock covers reads as well as writes.
type AllocationSession interface {
	Applicants(ctx context.Context, testID string) ([]models.Applicant, error)
	Venues(ctx context.Context, testID string) ([]models.Venue, error)
	ApplySeat(ctx context.Context, assignment models.SeatAssignment) error
	Commit() error
	Rollback() error
}

// AllocationTx is a transaction holding the per-test allocation advisory lock.
type AllocationTx struct {
	tx *sqlx.Tx
}

// BeginAllocation opens a transaction and takes the advisory lock for the
// test. Returns ErrAllocationLocked without blocking when another run holds it.
func (r *ApplicantRepository) BeginAllocation(ctx context.Context, testID string) (AllocationSession, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin allocation: %w", err)
	}

	var locked bool
	if err := tx.GetContext(ctx, &locked, `SELECT pg_try_advisory_xact_lock($1)`, allocationLockKey(testID)); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("acquire allocation lock: %w", err)
	}
	if !locked {
		_ = tx.Rollback()
		return nil, ErrAllocationLocked
	}
	return &AllocationTx{tx: tx}, nil
}

// Applicants loads the full roster for the test inside the locked transaction.
func (a *AllocationTx) Applicants(ctx context.Context, testID string) ([]models.Applicant, error) {
	const query = `SELECT id, test_id, roll_number, name, email, phone, venue_id, seat_number, created_at
        FROM applicants WHERE test_id = $1 ORDER BY created_at ASC, id ASC`
	var applicants []models.Applicant
	if err := a.tx.SelectContext(ctx, &applicants, query, testID); err != nil {
		return nil, fmt.Errorf("load applicants: %w", err)
	}
	return applicants, nil
}

// Venues loads the test's venues in creation order inside the transaction.
func (a *AllocationTx) Venues(ctx context.Context, testID string) ([]models.Venue, error) {
	const query = `SELECT id, test_id, name, capacity, created_at
        FROM venues WHERE test_id = $1 ORDER BY created_at ASC, id ASC`
	var venues []models.Venue
	if err := a.tx.SelectContext(ctx, &venues, query, testID); err != nil {
		return nil, fmt.Errorf("load venues: %w", err)
	}
	return venues, nil
}

// ApplySeat persists one allocation decision. NULL venue and seat mark an
// overflow applicant as explicitly unseated.
func (a *AllocationTx) ApplySeat(ctx context.Context, assignment models.SeatAssignment) error {
	const query = `UPDATE applicants SET venue_id = $2, seat_number = $3 WHERE id = $1`
	if _, err := a.tx.ExecContext(ctx, query, assignment.ApplicantID, assignment.VenueID, assignment.SeatNumber); err != nil {
		return fmt.Errorf("apply seat assignment: %w", err)
	}
	return nil
}

// Commit finalises the allocation run and releases the advisory lock.
func (a *AllocationTx) Commit() error {
	return a.tx.Commit()
}

// Rollback aborts the run; safe to call after Commit.
func (a *AllocationTx) Rollback() error {
	return a.tx.Rollback()
}

// allocationLockKey hashes the test ID into the bigint keyspace used by
// PostgreSQL advisory locks.
func allocationLockKey(testID string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte("seat-allocation:" + testID))
	return int64(h.Sum64())
}
