package models

// DashboardStats carries the entity counts shown on the console landing page.
type DashboardStats struct {
	Campaigns  int `json:"campaigns"`
	Tests      int `json:"tests"`
	Applicants int `json:"applicants"`
}
