package workhours

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

var Statuses = []string{StatusPending, StatusApproved, StatusRejected}

const (
	CategoryRegular  = "regular"
	CategoryOvertime = "overtime"
	CategoryHoliday  = "holiday"
	CategoryTraining = "training"
)

var Categories = []string{CategoryRegular, CategoryOvertime, CategoryHoliday, CategoryTraining}

const maxBulkApprove = 200
