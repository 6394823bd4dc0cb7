package rosters

import "time"

type Roster struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	ProjectID     string       `json:"projectId"`
	ProjectName   string       `json:"projectName,omitempty"`
	ClientID      string       `json:"clientId"`
	StartDate     time.Time    `json:"startDate"`
	EndDate       time.Time    `json:"endDate"`
	StartTime     string       `json:"startTime"`
	EndTime       string       `json:"endTime"`
	ExpectedHours float64      `json:"expectedHours"`
	Status        string       `json:"status"`
	Notes         string       `json:"notes"`
	CreatedBy     string       `json:"createdBy,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
	Assignments   []Assignment `json:"assignments,omitempty"`
}

type Assignment struct {
	RosterID    string    `json:"rosterId"`
	ProfileID   string    `json:"profileId"`
	ProfileName string    `json:"profileName,omitempty"`
	Status      string    `json:"status"`
	AssignedAt  time.Time `json:"assignedAt"`
}

type Filter struct {
	ProjectID string
	Status    string
	ProfileID string
	From      time.Time
	To        time.Time
}

type AssignResult struct {
	Assigned []string `json:"assigned"`
	Existing []string `json:"existing"`
}

type GenerateResult struct {
	RosterID string `json:"rosterId"`
	Created  int    `json:"created"`
	Skipped  int    `json:"skipped"`
}
