package service

import (
	"context"
	"encoding/csv"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type rosterRepository interface {
	UpsertBatch(ctx context.Context, rows []models.ApplicantUpsert) (int, error)
}

// rosterColumns maps each roster field to its accepted header spellings, in
// priority order. Matching is exact per variant; there is no fuzzy matching.
var rosterColumns = map[string][]string{
	"roll_number": {"roll_number", "Roll Number", "ROLL NUMBER"},
	"name":        {"name", "Name", "NAME"},
	"email":       {"email", "Email", "EMAIL"},
	"phone":       {"phone", "Phone", "PHONE"},
}

// RosterService ingests uploaded roster files into a test's applicant set.
type RosterService struct {
	repo   rosterRepository
	logger *zap.Logger
}

// NewRosterService constructs the roster service.
func NewRosterService(repo rosterRepository, logger *zap.Logger) *RosterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, logger: logger}
}

// Import parses the uploaded file, normalizes and deduplicates its rows and
// writes the surviving set through a single batched upsert keyed on
// (test_id, roll_number). Later rows win over earlier ones with the same roll
// number. Nothing is written when no valid rows survive.
func (s *RosterService) Import(ctx context.Context, testID string, file io.Reader) (*models.ImportSummary, error) {
	if strings.TrimSpace(testID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "test id is required")
	}

	rows, err := parseRosterFile(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unable to parse roster file")
	}

	valid := make([]models.ApplicantUpsert, 0, len(rows))
	for _, row := range rows {
		rollNumber := probeColumn(row, "roll_number")
		name := probeColumn(row, "name")
		if rollNumber == "" || name == "" {
			continue
		}
		valid = append(valid, models.ApplicantUpsert{
			TestID:     testID,
			RollNumber: rollNumber,
			Name:       name,
			Email:      optionalColumn(row, "email"),
			Phone:      optionalColumn(row, "phone"),
		})
	}

	if len(valid) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyRoster, "no valid rows in roster file: columns roll_number and name are required")
	}

	unique := dedupeByRollNumber(valid)

	upserted, err := s.repo.UpsertBatch(ctx, unique)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save applicants")
	}

	summary := &models.ImportSummary{
		TotalValid:        len(valid),
		DuplicatesRemoved: len(valid) - len(unique),
		Upserted:          upserted,
	}
	s.logger.Sugar().Infow("roster imported",
		"test_id", testID,
		"valid", summary.TotalValid,
		"duplicates_removed", summary.DuplicatesRemoved,
		"upserted", summary.Upserted)
	return summary, nil
}

// parseRosterFile reads the CSV into ordered row maps keyed by header cell.
// Headers are trimmed; rows shorter than the header are padded with empties.
func parseRosterFile(file io.Reader) ([]map[string]string, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		// Header-only or empty files fall through to the empty-roster check.
		return nil, nil
	}

	headers := records[0]
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// probeColumn extracts a field by trying each accepted header spelling in
// priority order. Values are trimmed so whitespace-only cells count as empty.
func probeColumn(row map[string]string, field string) string {
	for _, variant := range rosterColumns[field] {
		if value, ok := row[variant]; ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

func optionalColumn(row map[string]string, field string) *string {
	if value := probeColumn(row, field); value != "" {
		return &value
	}
	return nil
}

// dedupeByRollNumber collapses repeated roll numbers keeping the data of the
// last occurrence. Output order follows the first appearance of each key.
func dedupeByRollNumber(rows []models.ApplicantUpsert) []models.ApplicantUpsert {
	index := make(map[string]int, len(rows))
	unique := make([]models.ApplicantUpsert, 0, len(rows))
	for _, row := range rows {
		if pos, seen := index[row.RollNumber]; seen {
			unique[pos] = row
			continue
		}
		index[row.RollNumber] = len(unique)
		unique = append(unique, row)
	}
	return unique
}
