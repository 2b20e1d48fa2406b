package models

import "time"

// Campaign is the top-level grouping of placement activity over a date range.
type Campaign struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CampaignFilter encapsulates search parameters for listing campaigns.
type CampaignFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Cycle is a phase within a campaign.
type Cycle struct {
	ID          string    `db:"id" json:"id"`
	CampaignID  string    `db:"campaign_id" json:"campaign_id"`
	Name        string    `db:"name" json:"name"`
	CycleNumber int       `db:"cycle_number" json:"cycle_number"`
	StartDate   time.Time `db:"start_date" json:"start_date"`
	EndDate     time.Time `db:"end_date" json:"end_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
