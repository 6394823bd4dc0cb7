package rosters

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusDraft, StatusPublished, StatusCompleted, StatusCancelled}

const (
	AssignmentAssigned  = "assigned"
	AssignmentConfirmed = "confirmed"
	AssignmentDeclined  = "declined"
)

var AssignmentStatuses = []string{AssignmentAssigned, AssignmentConfirmed, AssignmentDeclined}

// maxRosterDays bounds how many days of entries one generation may create.
const maxRosterDays = 93
