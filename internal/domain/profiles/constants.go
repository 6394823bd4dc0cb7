package profiles

const (
	EmploymentFullTime   = "full_time"
	EmploymentPartTime   = "part_time"
	EmploymentCasual     = "casual"
	EmploymentContractor = "contractor"
)

var EmploymentTypes = []string{EmploymentFullTime, EmploymentPartTime, EmploymentCasual, EmploymentContractor}

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var Statuses = []string{StatusActive, StatusInactive}
