package models

import "time"

// ExportFormat selects the rendered file type for seating exports.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// Valid returns true when the format is supported.
func (f ExportFormat) Valid() bool {
	return f == ExportFormatCSV || f == ExportFormatPDF
}

// ExportStatus tracks the lifecycle of an async export job.
type ExportStatus string

const (
	ExportStatusPending   ExportStatus = "pending"
	ExportStatusCompleted ExportStatus = "completed"
	ExportStatusFailed    ExportStatus = "failed"
)

// SeatingExport is a persisted export job row.
type SeatingExport struct {
	ID          string       `db:"id" json:"id"`
	TestID      string       `db:"test_id" json:"test_id"`
	Format      ExportFormat `db:"format" json:"format"`
	Status      ExportStatus `db:"status" json:"status"`
	FilePath    *string      `db:"file_path" json:"-"`
	Token       *string      `db:"token" json:"token,omitempty"`
	ExpiresAt   *time.Time   `db:"expires_at" json:"expires_at,omitempty"`
	Error       *string      `db:"error" json:"error,omitempty"`
	RequestedBy *string      `db:"requested_by" json:"requested_by,omitempty"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time    `db:"updated_at" json:"updated_at"`
}
