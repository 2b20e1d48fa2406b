package models

import "time"

// AttendanceStatus is the recorded state of an applicant at a test.
type AttendanceStatus string

// AttendanceStatusPresent is the only status the recorder writes; there is no
// transition back to unmarked.
const AttendanceStatusPresent AttendanceStatus = "present"

// AttendanceRecord links one applicant to one test. At most one record exists
// per (applicant, test) pair, enforced by a unique index.
type AttendanceRecord struct {
	ID          string           `db:"id" json:"id"`
	ApplicantID string           `db:"applicant_id" json:"applicant_id"`
	TestID      string           `db:"test_id" json:"test_id"`
	Status      AttendanceStatus `db:"status" json:"status"`
	MarkedBy    *string          `db:"marked_by" json:"marked_by,omitempty"`
	MarkedAt    time.Time        `db:"marked_at" json:"marked_at"`
}

// AttendanceDetail extends a record with applicant metadata for listings.
type AttendanceDetail struct {
	AttendanceRecord
	RollNumber    string `db:"roll_number" json:"roll_number"`
	ApplicantName string `db:"applicant_name" json:"applicant_name"`
}

// MarkAttendanceResult reports a successful mark.
type MarkAttendanceResult struct {
	Record        AttendanceRecord `json:"record"`
	RollNumber    string           `json:"roll_number"`
	ApplicantName string           `json:"applicant_name"`
}
