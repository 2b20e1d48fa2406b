package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/export"
	"github.com/placement-ops/console-api/pkg/jobs"
	"github.com/placement-ops/console-api/pkg/storage"
)

type exportRepository interface {
	Create(ctx context.Context, exp *models.SeatingExport) error
	FindByID(ctx context.Context, id string) (*models.SeatingExport, error)
	MarkCompleted(ctx context.Context, id, filePath, token string, expiresAt time.Time) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type seatedApplicantRepository interface {
	ListSeated(ctx context.Context, testID string) ([]models.SeatedApplicant, error)
}

type exportQueue interface {
	Enqueue(job jobs.Job) error
}

// seatingExportHeaders fixes the column set and order for every rendered file.
var seatingExportHeaders = []string{"Roll Number", "Name", "Venue", "Seat"}

// ExportService produces downloadable seating sheets asynchronously. A request
// records a pending job row and enqueues generation; completed jobs carry a
// signed download token with an expiry.
type ExportService struct {
	exports    exportRepository
	applicants seatedApplicantRepository
	queue      exportQueue
	csv        *export.CSVExporter
	pdf        *export.PDFExporter
	files      *storage.LocalStorage
	signer     *storage.SignedURLSigner
	logger     *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(
	exports exportRepository,
	applicants seatedApplicantRepository,
	queue exportQueue,
	csv *export.CSVExporter,
	pdf *export.PDFExporter,
	files *storage.LocalStorage,
	signer *storage.SignedURLSigner,
	logger *zap.Logger,
) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		exports:    exports,
		applicants: applicants,
		queue:      queue,
		csv:        csv,
		pdf:        pdf,
		files:      files,
		signer:     signer,
		logger:     logger,
	}
}

// Request creates a pending export for the test and queues its generation.
func (s *ExportService) Request(ctx context.Context, testID string, format models.ExportFormat, requestedBy string) (*models.SeatingExport, error) {
	if testID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "test id is required")
	}
	if !format.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	exp := &models.SeatingExport{TestID: testID, Format: format}
	if requestedBy != "" {
		exp.RequestedBy = &requestedBy
	}
	if err := s.exports.Create(ctx, exp); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create export")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: exp.ID, Type: "seating_export", Payload: exp.ID}); err != nil {
		// The row stays visible as pending; mark it failed so callers are not
		// left polling a job that will never run.
		_ = s.exports.MarkFailed(ctx, exp.ID, "export queue unavailable")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return exp, nil
}

// HandleJob is the queue handler for seating exports.
func (s *ExportService) HandleJob(ctx context.Context, job jobs.Job) error {
	exportID, ok := job.Payload.(string)
	if !ok || exportID == "" {
		s.logger.Sugar().Errorw("export job with invalid payload", "job_id", job.ID)
		return nil
	}
	return s.Generate(ctx, exportID)
}

// Generate renders and stores the file for one export job, then records the
// signed download token. Failures are written back onto the job row.
func (s *ExportService) Generate(ctx context.Context, exportID string) error {
	exp, err := s.exports.FindByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Sugar().Warnw("export job for unknown export", "export_id", exportID)
			return nil
		}
		return fmt.Errorf("load export %s: %w", exportID, err)
	}

	seated, err := s.applicants.ListSeated(ctx, exp.TestID)
	if err != nil {
		_ = s.exports.MarkFailed(ctx, exportID, "failed to load seating data")
		return fmt.Errorf("load seating for export %s: %w", exportID, err)
	}
	if len(seated) == 0 {
		_ = s.exports.MarkFailed(ctx, exportID, "no seated applicants for this test; run allocation first")
		return nil
	}

	data := buildSeatingDataset(seated)

	var rendered []byte
	switch exp.Format {
	case models.ExportFormatCSV:
		rendered, err = s.csv.Render(data)
	case models.ExportFormatPDF:
		rendered, err = s.pdf.Render(data, "Seating Plan")
	default:
		err = fmt.Errorf("unsupported format %q", exp.Format)
	}
	if err != nil {
		_ = s.exports.MarkFailed(ctx, exportID, "failed to render export file")
		return fmt.Errorf("render export %s: %w", exportID, err)
	}

	relPath := path.Join(exp.TestID, fmt.Sprintf("seating-%s.%s", exp.ID, exp.Format))
	if _, err := s.files.Save(relPath, rendered); err != nil {
		_ = s.exports.MarkFailed(ctx, exportID, "failed to store export file")
		return fmt.Errorf("store export %s: %w", exportID, err)
	}

	token, expiresAt, err := s.signer.Generate(exp.ID, relPath)
	if err != nil {
		_ = s.exports.MarkFailed(ctx, exportID, "failed to sign download link")
		return fmt.Errorf("sign export %s: %w", exportID, err)
	}

	if err := s.exports.MarkCompleted(ctx, exp.ID, relPath, token, expiresAt); err != nil {
		return fmt.Errorf("complete export %s: %w", exportID, err)
	}
	s.logger.Sugar().Infow("export completed",
		"export_id", exp.ID,
		"test_id", exp.TestID,
		"format", exp.Format,
		"rows", len(seated))
	return nil
}

// Status returns the current state of an export job.
func (s *ExportService) Status(ctx context.Context, exportID string) (*models.SeatingExport, error) {
	exp, err := s.exports.FindByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export")
	}
	return exp, nil
}

// Download validates the signed token and opens the stored file. The returned
// filename is the suggested client-side name.
func (s *ExportService) Download(ctx context.Context, token string) (io.ReadCloser, string, error) {
	exportID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "download link is invalid or expired")
	}

	exp, err := s.exports.FindByID(ctx, exportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load export")
	}
	if exp.Status != models.ExportStatusCompleted {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export is not ready")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, path.Base(relPath), nil
}

func buildSeatingDataset(seated []models.SeatedApplicant) export.Dataset {
	rows := make([]map[string]string, 0, len(seated))
	for _, applicant := range seated {
		rows = append(rows, map[string]string{
			"Roll Number": applicant.RollNumber,
			"Name":        applicant.Name,
			"Venue":       applicant.VenueName,
			"Seat":        applicant.SeatNumber,
		})
	}
	return export.Dataset{Headers: seatingExportHeaders, Rows: rows}
}
