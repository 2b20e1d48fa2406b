package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// CycleRepository manages persistence for campaign cycles.
type CycleRepository struct {
	db *sqlx.DB
}

// NewCycleRepository constructs a CycleRepository.
func NewCycleRepository(db *sqlx.DB) *CycleRepository {
	return &CycleRepository{db: db}
}

// ListByCampaign returns all cycles for a campaign ordered by cycle number.
func (r *CycleRepository) ListByCampaign(ctx context.Context, campaignID string) ([]models.Cycle, error) {
	const query = `SELECT id, campaign_id, name, cycle_number, start_date, end_date, created_at, updated_at
        FROM cycles WHERE campaign_id = $1 ORDER BY cycle_number ASC`
	var cycles []models.Cycle
	if err := r.db.SelectContext(ctx, &cycles, query, campaignID); err != nil {
		return nil, fmt.Errorf("list cycles: %w", err)
	}
	return cycles, nil
}

// FindByID fetches a cycle by ID.
func (r *CycleRepository) FindByID(ctx context.Context, id string) (*models.Cycle, error) {
	const query = `SELECT id, campaign_id, name, cycle_number, start_date, end_date, created_at, updated_at
        FROM cycles WHERE id = $1`
	var cycle models.Cycle
	if err := r.db.GetContext(ctx, &cycle, query, id); err != nil {
		return nil, err
	}
	return &cycle, nil
}

// Create inserts a new cycle record.
func (r *CycleRepository) Create(ctx context.Context, cycle *models.Cycle) error {
	if cycle.ID == "" {
		cycle.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if cycle.CreatedAt.IsZero() {
		cycle.CreatedAt = now
	}
	cycle.UpdatedAt = now
	const query = `INSERT INTO cycles (id, campaign_id, name, cycle_number, start_date, end_date, created_at, updated_at)
        VALUES (:id, :campaign_id, :name, :cycle_number, :start_date, :end_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cycle); err != nil {
		return fmt.Errorf("create cycle: %w", err)
	}
	return nil
}
