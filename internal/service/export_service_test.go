package service

import (
	"context"
	"database/sql"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
	"github.com/placement-ops/console-api/pkg/export"
	"github.com/placement-ops/console-api/pkg/jobs"
	"github.com/placement-ops/console-api/pkg/storage"
)

type mockExportRepo struct {
	exports map[string]*models.SeatingExport
}

func (m *mockExportRepo) Create(ctx context.Context, exp *models.SeatingExport) error {
	if m.exports == nil {
		m.exports = make(map[string]*models.SeatingExport)
	}
	if exp.ID == "" {
		exp.ID = "exp-1"
	}
	if exp.Status == "" {
		exp.Status = models.ExportStatusPending
	}
	copied := *exp
	m.exports[exp.ID] = &copied
	return nil
}

func (m *mockExportRepo) FindByID(ctx context.Context, id string) (*models.SeatingExport, error) {
	if exp, ok := m.exports[id]; ok {
		copied := *exp
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExportRepo) MarkCompleted(ctx context.Context, id, filePath, token string, expiresAt time.Time) error {
	exp := m.exports[id]
	exp.Status = models.ExportStatusCompleted
	exp.FilePath = &filePath
	exp.Token = &token
	exp.ExpiresAt = &expiresAt
	return nil
}

func (m *mockExportRepo) MarkFailed(ctx context.Context, id, reason string) error {
	exp := m.exports[id]
	exp.Status = models.ExportStatusFailed
	exp.Error = &reason
	return nil
}

type mockSeatedRepo struct {
	seated []models.SeatedApplicant
}

func (m *mockSeatedRepo) ListSeated(ctx context.Context, testID string) ([]models.SeatedApplicant, error) {
	return m.seated, nil
}

type mockExportQueue struct {
	jobs []jobs.Job
	err  error
}

func (m *mockExportQueue) Enqueue(job jobs.Job) error {
	if m.err != nil {
		return m.err
	}
	m.jobs = append(m.jobs, job)
	return nil
}

func newExportFixture(t *testing.T, seated []models.SeatedApplicant) (*ExportService, *mockExportRepo, *mockExportQueue) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	repo := &mockExportRepo{}
	queue := &mockExportQueue{}
	svc := NewExportService(repo, &mockSeatedRepo{seated: seated}, queue,
		export.NewCSVExporter(), export.NewPDFExporter(), files, signer, nil)
	return svc, repo, queue
}

func TestRequestExportQueuesJob(t *testing.T) {
	svc, repo, queue := newExportFixture(t, nil)

	exp, err := svc.Request(context.Background(), "test-1", models.ExportFormatCSV, "user-1")
	require.NoError(t, err)

	assert.Equal(t, models.ExportStatusPending, exp.Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, exp.ID, queue.jobs[0].Payload)
	assert.Contains(t, repo.exports, exp.ID)
}

func TestRequestExportRejectsUnknownFormat(t *testing.T) {
	svc, _, queue := newExportFixture(t, nil)

	_, err := svc.Request(context.Background(), "test-1", models.ExportFormat("xlsx"), "")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, queue.jobs)
}

func TestGenerateAndDownloadCSV(t *testing.T) {
	seated := []models.SeatedApplicant{
		{RollNumber: "R1", Name: "One", VenueName: "Hall A", SeatNumber: "1"},
		{RollNumber: "R2", Name: "Two", VenueName: "Hall A", SeatNumber: "2"},
	}
	svc, repo, _ := newExportFixture(t, seated)

	exp, err := svc.Request(context.Background(), "test-1", models.ExportFormatCSV, "")
	require.NoError(t, err)

	require.NoError(t, svc.Generate(context.Background(), exp.ID))

	stored, err := svc.Status(context.Background(), exp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusCompleted, stored.Status)
	require.NotNil(t, stored.Token)

	file, filename, err := svc.Download(context.Background(), *stored.Token)
	require.NoError(t, err)
	defer file.Close()

	assert.True(t, strings.HasSuffix(filename, ".csv"))
	body, err := io.ReadAll(file)
	require.NoError(t, err)

	content := string(body)
	assert.Contains(t, content, "Roll Number,Name,Venue,Seat")
	assert.Contains(t, content, "R1,One,Hall A,1")
	assert.Contains(t, content, "R2,Two,Hall A,2")

	require.NotNil(t, repo.exports[exp.ID].FilePath)
	assert.Contains(t, *repo.exports[exp.ID].FilePath, "test-1/")
}

func TestGenerateFailsWithoutSeating(t *testing.T) {
	svc, repo, _ := newExportFixture(t, nil)

	exp, err := svc.Request(context.Background(), "test-1", models.ExportFormatPDF, "")
	require.NoError(t, err)

	require.NoError(t, svc.Generate(context.Background(), exp.ID))

	stored := repo.exports[exp.ID]
	assert.Equal(t, models.ExportStatusFailed, stored.Status)
	require.NotNil(t, stored.Error)
	assert.Contains(t, *stored.Error, "no seated applicants")
}

func TestDownloadRejectsTamperedToken(t *testing.T) {
	seated := []models.SeatedApplicant{{RollNumber: "R1", Name: "One", VenueName: "A", SeatNumber: "1"}}
	svc, repo, _ := newExportFixture(t, seated)

	exp, err := svc.Request(context.Background(), "test-1", models.ExportFormatCSV, "")
	require.NoError(t, err)
	require.NoError(t, svc.Generate(context.Background(), exp.ID))

	token := *repo.exports[exp.ID].Token
	_, _, err = svc.Download(context.Background(), token+"x")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}
