package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// DashboardRepository aggregates the counts shown on the console landing page.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a DashboardRepository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// Stats returns campaign, test and applicant totals in one round trip.
func (r *DashboardRepository) Stats(ctx context.Context) (*models.DashboardStats, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM campaigns) AS campaigns,
        (SELECT COUNT(*) FROM tests) AS tests,
        (SELECT COUNT(*) FROM applicants) AS applicants`
	var stats models.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("dashboard stats: %w", err)
	}
	return &stats, nil
}
