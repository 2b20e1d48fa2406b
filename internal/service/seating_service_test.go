package service

import (
	"context"
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/placement-ops/console-api/internal/models"
	"github.com/placement-ops/console-api/internal/repository"
	appErrors "github.com/placement-ops/console-api/pkg/errors"
)

type mockAllocationSession struct {
	applicants []models.Applicant
	venues     []models.Venue
	applied    []models.SeatAssignment
	committed  bool
	rolledBack bool
}

func (m *mockAllocationSession) Applicants(ctx context.Context, testID string) ([]models.Applicant, error) {
	return m.applicants, nil
}

func (m *mockAllocationSession) Venues(ctx context.Context, testID string) ([]models.Venue, error) {
	return m.venues, nil
}

func (m *mockAllocationSession) ApplySeat(ctx context.Context, assignment models.SeatAssignment) error {
	m.applied = append(m.applied, assignment)
	return nil
}

func (m *mockAllocationSession) Commit() error {
	m.committed = true
	return nil
}

func (m *mockAllocationSession) Rollback() error {
	if !m.committed {
		m.rolledBack = true
	}
	return nil
}

type mockSeatingRepo struct {
	session *mockAllocationSession
	err     error
}

func (m *mockSeatingRepo) BeginAllocation(ctx context.Context, testID string) (repository.AllocationSession, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.session, nil
}

func makeApplicants(n int) []models.Applicant {
	applicants := make([]models.Applicant, n)
	for i := range applicants {
		applicants[i] = models.Applicant{
			ID:         "app-" + strconv.Itoa(i),
			RollNumber: "R" + strconv.Itoa(i),
		}
	}
	return applicants
}

func TestAllocateFillsVenuesInOrder(t *testing.T) {
	session := &mockAllocationSession{
		applicants: makeApplicants(5),
		venues: []models.Venue{
			{ID: "v1", Name: "Hall A", Capacity: 3},
			{ID: "v2", Name: "Hall B", Capacity: 4},
		},
	}
	svc := NewSeatingService(&mockSeatingRepo{session: session}, rand.New(rand.NewSource(1)), nil)

	summary, err := svc.Allocate(context.Background(), "test-1")
	require.NoError(t, err)
	require.True(t, session.committed)

	assert.Equal(t, 5, summary.Applicants)
	assert.Equal(t, 5, summary.Assigned)
	assert.Equal(t, 0, summary.Unseated)
	assert.Equal(t, 7, summary.TotalCapacity)

	require.Len(t, session.applied, 5)

	// The first venue fills completely before the second receives anyone,
	// and seats restart at 1 per venue.
	perVenue := map[string][]string{}
	for _, a := range session.applied {
		require.NotNil(t, a.VenueID)
		require.NotNil(t, a.SeatNumber)
		perVenue[*a.VenueID] = append(perVenue[*a.VenueID], *a.SeatNumber)
	}
	assert.Equal(t, []string{"1", "2", "3"}, perVenue["v1"])
	assert.Equal(t, []string{"1", "2"}, perVenue["v2"])
}

func TestAllocateOverflowGetsExplicitNulls(t *testing.T) {
	session := &mockAllocationSession{
		applicants: makeApplicants(5),
		venues: []models.Venue{
			{ID: "v1", Name: "Hall A", Capacity: 2},
			{ID: "v2", Name: "Hall B", Capacity: 2},
		},
	}
	svc := NewSeatingService(&mockSeatingRepo{session: session}, rand.New(rand.NewSource(7)), nil)

	summary, err := svc.Allocate(context.Background(), "test-1")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.Assigned)
	assert.Equal(t, 1, summary.Unseated)

	unseated := 0
	for _, a := range session.applied {
		if a.VenueID == nil {
			assert.Nil(t, a.SeatNumber)
			unseated++
		}
	}
	assert.Equal(t, 1, unseated)

	// Every applicant gets exactly one write, seated or not.
	assert.Len(t, session.applied, 5)
}

func TestAllocateNeverExceedsCapacity(t *testing.T) {
	session := &mockAllocationSession{
		applicants: makeApplicants(50),
		venues: []models.Venue{
			{ID: "v1", Name: "A", Capacity: 7},
			{ID: "v2", Name: "B", Capacity: 13},
			{ID: "v3", Name: "C", Capacity: 5},
		},
	}
	svc := NewSeatingService(&mockSeatingRepo{session: session}, rand.New(rand.NewSource(42)), nil)

	summary, err := svc.Allocate(context.Background(), "test-1")
	require.NoError(t, err)

	counts := map[string]int{}
	for _, a := range session.applied {
		if a.VenueID != nil {
			counts[*a.VenueID]++
		}
	}
	assert.Equal(t, 7, counts["v1"])
	assert.Equal(t, 13, counts["v2"])
	assert.Equal(t, 5, counts["v3"])
	assert.Equal(t, 25, summary.Assigned)
	assert.Equal(t, 25, summary.Unseated)
}

func TestAllocateNoApplicants(t *testing.T) {
	session := &mockAllocationSession{venues: []models.Venue{{ID: "v1", Capacity: 10}}}
	svc := NewSeatingService(&mockSeatingRepo{session: session}, rand.New(rand.NewSource(1)), nil)

	_, err := svc.Allocate(context.Background(), "test-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrNoApplicants))
	assert.Empty(t, session.applied)
	assert.False(t, session.committed)
	assert.True(t, session.rolledBack)
}

func TestAllocateConcurrentRunRejected(t *testing.T) {
	svc := NewSeatingService(&mockSeatingRepo{err: repository.ErrAllocationLocked}, rand.New(rand.NewSource(1)), nil)

	_, err := svc.Allocate(context.Background(), "test-1")
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAllocationRunning))
}

func TestAllocateShufflesUniformly(t *testing.T) {
	// With one single-seat venue, each of the four applicants should land the
	// seat roughly a quarter of the time across many seeded runs.
	wins := map[string]int{}
	const runs = 400
	for seed := 0; seed < runs; seed++ {
		session := &mockAllocationSession{
			applicants: makeApplicants(4),
			venues:     []models.Venue{{ID: "v1", Capacity: 1}},
		}
		svc := NewSeatingService(&mockSeatingRepo{session: session}, rand.New(rand.NewSource(int64(seed))), nil)
		_, err := svc.Allocate(context.Background(), "test-1")
		require.NoError(t, err)
		for _, a := range session.applied {
			if a.VenueID != nil {
				wins[a.ApplicantID]++
			}
		}
	}

	for id, count := range wins {
		assert.Greaterf(t, count, runs/8, "applicant %s starved of the seat", id)
	}
	assert.Len(t, wins, 4)
}
