package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type mockRosterRepo struct {
	batches [][]models.ApplicantUpsert
	err     error
}

func (m *mockRosterRepo) UpsertBatch(ctx context.Context, rows []models.ApplicantUpsert) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	m.batches = append(m.batches, rows)
	return len(rows), nil
}

func TestRosterImportDedupesLastWins(t *testing.T) {
	repo := &mockRosterRepo{}
	svc := NewRosterService(repo, nil)

	file := strings.NewReader("roll_number,name,email\n" +
		"A1,First Version,first@example.com\n" +
		"B2,Other,\n" +
		"A1,Second Version,second@example.com\n")

	summary, err := svc.Import(context.Background(), "test-1", file)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalValid)
	assert.Equal(t, 1, summary.DuplicatesRemoved)
	assert.Equal(t, 2, summary.Upserted)

	require.Len(t, repo.batches, 1)
	rows := repo.batches[0]
	require.Len(t, rows, 2)

	// First occurrence keeps its position but carries the last row's data.
	assert.Equal(t, "A1", rows[0].RollNumber)
	assert.Equal(t, "Second Version", rows[0].Name)
	require.NotNil(t, rows[0].Email)
	assert.Equal(t, "second@example.com", *rows[0].Email)
	assert.Equal(t, "B2", rows[1].RollNumber)
}

func TestRosterImportFiltersInvalidRows(t *testing.T) {
	repo := &mockRosterRepo{}
	svc := NewRosterService(repo, nil)

	file := strings.NewReader("roll_number,name\n" +
		",No Roll\n" +
		"C3,\n" +
		"   ,   \n" +
		"D4,  Valid Person  \n")

	summary, err := svc.Import(context.Background(), "test-1", file)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.TotalValid)
	assert.Equal(t, 0, summary.DuplicatesRemoved)

	require.Len(t, repo.batches, 1)
	require.Len(t, repo.batches[0], 1)
	assert.Equal(t, "D4", repo.batches[0][0].RollNumber)
	assert.Equal(t, "Valid Person", repo.batches[0][0].Name)
}

func TestRosterImportHeaderVariants(t *testing.T) {
	repo := &mockRosterRepo{}
	svc := NewRosterService(repo, nil)

	file := strings.NewReader("Roll Number,NAME,Phone\nE5,Someone,555-0100\n")

	summary, err := svc.Import(context.Background(), "test-1", file)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Upserted)

	row := repo.batches[0][0]
	assert.Equal(t, "E5", row.RollNumber)
	assert.Equal(t, "Someone", row.Name)
	require.NotNil(t, row.Phone)
	assert.Equal(t, "555-0100", *row.Phone)
}

func TestRosterImportEmptyFileWritesNothing(t *testing.T) {
	repo := &mockRosterRepo{}
	svc := NewRosterService(repo, nil)

	_, err := svc.Import(context.Background(), "test-1", strings.NewReader("roll_number,name\n"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrEmptyRoster))
	assert.Empty(t, repo.batches)
}

func TestRosterImportAllRowsInvalidWritesNothing(t *testing.T) {
	repo := &mockRosterRepo{}
	svc := NewRosterService(repo, nil)

	file := strings.NewReader("roll_number,name\n,missing roll\nF6,\n")
	_, err := svc.Import(context.Background(), "test-1", file)
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrEmptyRoster))
	assert.Empty(t, repo.batches)
}

func TestRosterImportRequiresTestID(t *testing.T) {
	svc := NewRosterService(&mockRosterRepo{}, nil)
	_, err := svc.Import(context.Background(), "  ", strings.NewReader("roll_number,name\nA1,X\n"))
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}
