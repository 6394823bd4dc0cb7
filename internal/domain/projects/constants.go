package projects

const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusOnHold    = "on_hold"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusActive, StatusCompleted, StatusOnHold, StatusCancelled}
