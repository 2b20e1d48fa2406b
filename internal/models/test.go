package models

import "time"

// Test is one scheduled examination session within a cycle.
type Test struct {
	ID              string    `db:"id" json:"id"`
	CampaignID      string    `db:"campaign_id" json:"campaign_id"`
	CycleID         string    `db:"cycle_id" json:"cycle_id"`
	Name            string    `db:"name" json:"name"`
	TestDate        time.Time `db:"test_date" json:"test_date"`
	TestTime        string    `db:"test_time" json:"test_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedBy       *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// TestDetail extends a test with roster and venue context.
type TestDetail struct {
	Test
	ApplicantCount int `db:"applicant_count" json:"applicant_count"`
	VenueCount     int `db:"venue_count" json:"venue_count"`
}

// Venue is a physical room with seating capacity assigned to a test.
type Venue struct {
	ID        string    `db:"id" json:"id"`
	TestID    string    `db:"test_id" json:"test_id"`
	Name      string    `db:"name" json:"name"`
	Capacity  int       `db:"capacity" json:"capacity"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
