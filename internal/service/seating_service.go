package service

import (
	"context"
	"errors"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/placement-ops/console-api/internal/models"
	"github.com/placement-ops/console-api/internal/repository"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type seatingRepository interface {
	BeginAllocation(ctx context.Context, testID string) (repository.AllocationSession, error)
}

// SeatingService distributes a test's applicants across its venues.
type SeatingService struct {
	repo   seatingRepository
	logger *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeatingService constructs the seating service. A nil rng falls back to a
// time-seeded source; tests inject a deterministic one.
func NewSeatingService(repo seatingRepository, rng *rand.Rand, logger *zap.Logger) *SeatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &SeatingService{repo: repo, logger: logger, rng: rng}
}

// Allocate shuffles the test's applicants uniformly and assigns them to
// venues in creation order, one seat at a time, never exceeding capacity.
// Applicants beyond total capacity are written back with explicit NULL venue
// and seat. The whole run holds the test's allocation lock; a concurrent run
// for the same test fails fast.
func (s *SeatingService) Allocate(ctx context.Context, testID string) (*models.AllocationSummary, error) {
	session, err := s.repo.BeginAllocation(ctx, testID)
	if err != nil {
		if errors.Is(err, repository.ErrAllocationLocked) {
			return nil, appErrors.Clone(appErrors.ErrAllocationRunning, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to start allocation")
	}
	defer session.Rollback() //nolint:errcheck

	applicants, err := session.Applicants(ctx, testID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load applicants")
	}
	if len(applicants) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNoApplicants, "no applicants found for test")
	}

	venues, err := session.Venues(ctx, testID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load venues")
	}

	shuffled := make([]models.Applicant, len(applicants))
	copy(shuffled, applicants)
	s.shuffle(shuffled)

	assignments, summary := buildAssignments(testID, shuffled, venues)

	// The full assignment is computed before the first write.
	for _, assignment := range assignments {
		if err := session.ApplySeat(ctx, assignment); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save seat assignment")
		}
	}

	if err := session.Commit(); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit allocation")
	}

	s.logger.Sugar().Infow("seating allocated",
		"test_id", testID,
		"applicants", summary.Applicants,
		"assigned", summary.Assigned,
		"unseated", summary.Unseated)
	return summary, nil
}

// shuffle applies a uniform Fisher-Yates permutation. The rng is guarded so
// concurrent allocations of different tests stay safe.
func (s *SeatingService) shuffle(applicants []models.Applicant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rng.Shuffle(len(applicants), func(i, j int) {
		applicants[i], applicants[j] = applicants[j], applicants[i]
	})
}

// buildAssignments walks venues with a per-venue seat cursor starting at 1.
// Seat numbers are plain decimal strings; overflow applicants get NULLs.
func buildAssignments(testID string, shuffled []models.Applicant, venues []models.Venue) ([]models.SeatAssignment, *models.AllocationSummary) {
	fills := make([]models.VenueFill, len(venues))
	totalCapacity := 0
	for i, venue := range venues {
		fills[i] = models.VenueFill{VenueID: venue.ID, VenueName: venue.Name, Capacity: venue.Capacity}
		totalCapacity += venue.Capacity
	}

	assignments := make([]models.SeatAssignment, 0, len(shuffled))
	currentVenue := 0
	seatInVenue := 1
	assigned := 0

	for _, applicant := range shuffled {
		if currentVenue >= len(venues) {
			assignments = append(assignments, models.SeatAssignment{ApplicantID: applicant.ID})
			continue
		}

		venue := venues[currentVenue]
		seat := strconv.Itoa(seatInVenue)
		assignments = append(assignments, models.SeatAssignment{
			ApplicantID: applicant.ID,
			VenueID:     &venue.ID,
			SeatNumber:  &seat,
		})
		fills[currentVenue].Assigned++
		assigned++

		seatInVenue++
		if seatInVenue > venue.Capacity {
			currentVenue++
			seatInVenue = 1
		}
	}

	summary := &models.AllocationSummary{
		TestID:        testID,
		Applicants:    len(shuffled),
		Assigned:      assigned,
		Unseated:      len(shuffled) - assigned,
		TotalCapacity: totalCapacity,
		Venues:        fills,
	}
	return assignments, summary
}
