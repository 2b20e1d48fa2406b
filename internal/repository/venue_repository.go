package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// VenueRepository manages persistence for test venues.
type VenueRepository struct {
	db *sqlx.DB
}

// NewVenueRepository constructs a VenueRepository.
func NewVenueRepository(db *sqlx.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// ListByTest returns venues for a test in creation order. The allocator
// depends on this ordering to walk venues deterministically.
func (r *VenueRepository) ListByTest(ctx context.Context, testID string) ([]models.Venue, error) {
	const query = `SELECT id, test_id, name, capacity, created_at
        FROM venues WHERE test_id = $1 ORDER BY created_at ASC, id ASC`
	var venues []models.Venue
	if err := r.db.SelectContext(ctx, &venues, query, testID); err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	return venues, nil
}

// Create inserts a new venue record.
func (r *VenueRepository) Create(ctx context.Context, venue *models.Venue) error {
	if venue.ID == "" {
		venue.ID = uuid.NewString()
	}
	if venue.CreatedAt.IsZero() {
		venue.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO venues (id, test_id, name, capacity, created_at)
        VALUES (:id, :test_id, :name, :capacity, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, venue); err != nil {
		return fmt.Errorf("create venue: %w", err)
	}
	return nil
}
