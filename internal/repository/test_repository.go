package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// TestRepository manages persistence for scheduled tests.
type TestRepository struct {
	db *sqlx.DB
}

// NewTestRepository constructs a TestRepository.
func NewTestRepository(db *sqlx.DB) *TestRepository {
	return &TestRepository{db: db}
}

// ListByCycle returns tests for a cycle with roster and venue counts.
func (r *TestRepository) ListByCycle(ctx context.Context, cycleID string) ([]models.TestDetail, error) {
	const query = `SELECT t.id, t.campaign_id, t.cycle_id, t.name, t.test_date, t.test_time, t.duration_minutes,
        t.created_by, t.created_at, t.updated_at,
        COUNT(DISTINCT a.id) AS applicant_count, COUNT(DISTINCT v.id) AS venue_count
        FROM tests t
        LEFT JOIN applicants a ON a.test_id = t.id
        LEFT JOIN venues v ON v.test_id = t.id
        WHERE t.cycle_id = $1
        GROUP BY t.id
        ORDER BY t.test_date ASC, t.test_time ASC`
	var tests []models.TestDetail
	if err := r.db.SelectContext(ctx, &tests, query, cycleID); err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	return tests, nil
}

// ListUpcoming returns tests whose date is on or after the given day, soonest
// first. Used by the attendance screen's test selector.
func (r *TestRepository) ListUpcoming(ctx context.Context, from time.Time) ([]models.Test, error) {
	const query = `SELECT id, campaign_id, cycle_id, name, test_date, test_time, duration_minutes,
        created_by, created_at, updated_at
        FROM tests WHERE test_date >= $1 ORDER BY test_date ASC, test_time ASC`
	var tests []models.Test
	if err := r.db.SelectContext(ctx, &tests, query, from); err != nil {
		return nil, fmt.Errorf("list upcoming tests: %w", err)
	}
	return tests, nil
}

// FindByID fetches a test by ID.
func (r *TestRepository) FindByID(ctx context.Context, id string) (*models.Test, error) {
	const query = `SELECT id, campaign_id, cycle_id, name, test_date, test_time, duration_minutes,
        created_by, created_at, updated_at
        FROM tests WHERE id = $1`
	var test models.Test
	if err := r.db.GetContext(ctx, &test, query, id); err != nil {
		return nil, err
	}
	return &test, nil
}

// Create inserts a new test record.
func (r *TestRepository) Create(ctx context.Context, test *models.Test) error {
	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if test.CreatedAt.IsZero() {
		test.CreatedAt = now
	}
	test.UpdatedAt = now
	const query = `INSERT INTO tests (id, campaign_id, cycle_id, name, test_date, test_time, duration_minutes, created_by, created_at, updated_at)
        VALUES (:id, :campaign_id, :cycle_id, :name, :test_date, :test_time, :duration_minutes, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, test); err != nil {
		return fmt.Errorf("create test: %w", err)
	}
	return nil
}
