package workhours

import "time"

type Entry struct {
	ID              string     `json:"id"`
	ProfileID       string     `json:"profileId"`
	ProfileName     string     `json:"profileName,omitempty"`
	ClientID        string     `json:"clientId"`
	ProjectID       string     `json:"projectId"`
	RosterID        string     `json:"rosterId,omitempty"`
	WorkDate        time.Time  `json:"workDate"`
	ScheduledStart  string     `json:"scheduledStart"`
	ScheduledEnd    string     `json:"scheduledEnd"`
	ActualStart     string     `json:"actualStart"`
	ActualEnd       string     `json:"actualEnd"`
	ScheduledHours  float64    `json:"scheduledHours"`
	ActualHours     float64    `json:"actualHours"`
	OvertimeHours   float64    `json:"overtimeHours"`
	HourlyRate      float64    `json:"hourlyRate"`
	PayableAmount   float64    `json:"payableAmount"`
	Category        string     `json:"category"`
	Notes           string     `json:"notes"`
	Status          string     `json:"status"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Input is the caller-editable part of an entry. A nil HourlyRate means the
// profile's rate applies.
type Input struct {
	ProfileID      string
	ClientID       string
	ProjectID      string
	RosterID       string
	WorkDate       time.Time
	ScheduledStart string
	ScheduledEnd   string
	ActualStart    string
	ActualEnd      string
	HourlyRate     *float64
	Category       string
	Notes          string
}

type Filter struct {
	ProfileID string
	ProjectID string
	ClientID  string
	RosterID  string
	Status    string
	Category  string
	From      time.Time
	To        time.Time
}

type BulkResult struct {
	Approved []string          `json:"approved"`
	Skipped  map[string]string `json:"skipped"`
}
