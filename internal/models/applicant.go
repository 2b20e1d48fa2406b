package models

import "time"

// Applicant is a candidate registered for a test. Venue and seat stay NULL
// until seat allocation runs; overflow applicants keep explicit NULLs.
type Applicant struct {
	ID         string    `db:"id" json:"id"`
	TestID     string    `db:"test_id" json:"test_id"`
	RollNumber string    `db:"roll_number" json:"roll_number"`
	Name       string    `db:"name" json:"name"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	VenueID    *string   `db:"venue_id" json:"venue_id,omitempty"`
	SeatNumber *string   `db:"seat_number" json:"seat_number,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ApplicantFilter scopes applicant listing queries.
type ApplicantFilter struct {
	TestID    string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ApplicantUpsert is one deduplicated roster row bound for the batched upsert.
type ApplicantUpsert struct {
	TestID     string  `db:"test_id"`
	RollNumber string  `db:"roll_number"`
	Name       string  `db:"name"`
	Email      *string `db:"email"`
	Phone      *string `db:"phone"`
}

// SeatedApplicant joins an assigned applicant with its venue name for exports.
type SeatedApplicant struct {
	RollNumber string `db:"roll_number" json:"roll_number"`
	Name       string `db:"name" json:"name"`
	VenueName  string `db:"venue_name" json:"venue_name"`
	SeatNumber string `db:"seat_number" json:"seat_number"`
}

// SeatAssignment is one allocation decision keyed by applicant ID.
type SeatAssignment struct {
	ApplicantID string
	VenueID     *string
	SeatNumber  *string
}

// ImportSummary reports the outcome of a roster import.
type ImportSummary struct {
	TotalValid        int `json:"total_valid"`
	DuplicatesRemoved int `json:"duplicates_removed"`
	Upserted          int `json:"upserted"`
}

// VenueFill reports how many seats were taken in one venue.
type VenueFill struct {
	VenueID   string `json:"venue_id"`
	VenueName string `json:"venue_name"`
	Capacity  int    `json:"capacity"`
	Assigned  int    `json:"assigned"`
}

// AllocationSummary reports the outcome of a seat allocation run.
type AllocationSummary struct {
	TestID        string      `json:"test_id"`
	Applicants    int         `json:"applicants"`
	Assigned      int         `json:"assigned"`
	Unseated      int         `json:"unseated"`
	TotalCapacity int         `json:"total_capacity"`
	Venues        []VenueFill `json:"venues"`
}
