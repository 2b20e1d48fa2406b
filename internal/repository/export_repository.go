package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// ExportRepository tracks seating export jobs.
type ExportRepository struct {
	db *sqlx.DB
}

// NewExportRepository constructs an ExportRepository.
func NewExportRepository(db *sqlx.DB) *ExportRepository {
	return &ExportRepository{db: db}
}

// Create inserts a pending export job.
func (r *ExportRepository) Create(ctx context.Context, exp *models.SeatingExport) error {
	if exp.ID == "" {
		exp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if exp.CreatedAt.IsZero() {
		exp.CreatedAt = now
	}
	exp.UpdatedAt = now
	if exp.Status == "" {
		exp.Status = models.ExportStatusPending
	}
	const query = `INSERT INTO seating_exports (id, test_id, format, status, requested_by, created_at, updated_at)
        VALUES (:id, :test_id, :format, :status, :requested_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exp); err != nil {
		return fmt.Errorf("create export: %w", err)
	}
	return nil
}

// FindByID fetches an export job by ID.
func (r *ExportRepository) FindByID(ctx context.Context, id string) (*models.SeatingExport, error) {
	const query = `SELECT id, test_id, format, status, file_path, token, expires_at, error, requested_by, created_at, updated_at
        FROM seating_exports WHERE id = $1`
	var exp models.SeatingExport
	if err := r.db.GetContext(ctx, &exp, query, id); err != nil {
		return nil, err
	}
	return &exp, nil
}

// MarkCompleted records a finished export with its file location and token.
func (r *ExportRepository) MarkCompleted(ctx context.Context, id, filePath, token string, expiresAt time.Time) error {
	const query = `UPDATE seating_exports
        SET status = $2, file_path = $3, token = $4, expires_at = $5, error = NULL, updated_at = $6
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusCompleted, filePath, token, expiresAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete export: %w", err)
	}
	return nil
}

// MarkFailed records a failed export with its reason.
func (r *ExportRepository) MarkFailed(ctx context.Context, id, reason string) error {
	const query = `UPDATE seating_exports SET status = $2, error = $3, updated_at = $4 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, models.ExportStatusFailed, reason, time.Now().UTC()); err != nil {
		return fmt.Errorf("fail export: %w", err)
	}
	return nil
}
