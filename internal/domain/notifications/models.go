package notifications

import "time"

type Notification struct {
	ID         string     `json:"id"`
	ProfileID  string     `json:"profileId"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	EntityType string     `json:"entityType,omitempty"`
	EntityID   string     `json:"entityId,omitempty"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Digest summarises one pending-hours digest run.
type Digest struct {
	PendingEntries int `json:"pendingEntries"`
	Notified       int `json:"notified"`
}
