package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/placement-ops/console-api/internal/models"
)

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Mark inserts an attendance record guarded by the unique index on
// (applicant_id, test_id). Returns false when the pair was already marked;
// the conflict itself is the already-marked signal, so concurrent scans of
// the same roll number cannot double-insert.
func (r *AttendanceRepository) Mark(ctx context.Context, record *models.AttendanceRecord) (bool, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.AttendanceStatusPresent
	}
	if record.MarkedAt.IsZero() {
		record.MarkedAt = time.Now().UTC()
	}

	const query = `INSERT INTO attendance (id, applicant_id, test_id, status, marked_by, marked_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (applicant_id, test_id) DO NOTHING`
	result, err := r.db.ExecContext(ctx, query,
		record.ID, record.ApplicantID, record.TestID, record.Status, record.MarkedBy, record.MarkedAt)
	if err != nil {
		return false, fmt.Errorf("mark attendance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark attendance result: %w", err)
	}
	return affected == 1, nil
}

// ListByTest returns attendance records for a test with applicant metadata.
func (r *AttendanceRepository) ListByTest(ctx context.Context, testID string) ([]models.AttendanceDetail, error) {
	const query = `SELECT att.id, att.applicant_id, att.test_id, att.status, att.marked_by, att.marked_at,
        a.roll_number, a.name AS applicant_name
        FROM attendance att
        JOIN applicants a ON a.id = att.applicant_id
        WHERE att.test_id = $1
        ORDER BY att.marked_at DESC`
	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, testID); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// CountByTest returns the number of applicants marked present for a test.
func (r *AttendanceRepository) CountByTest(ctx context.Context, testID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM attendance WHERE test_id = $1`, testID); err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}
