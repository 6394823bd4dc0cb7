package notifications

const (
	TypeHoursApproved      = "hours_approved"
	TypeHoursRejected      = "hours_rejected"
	TypeRosterAssigned     = "roster_assigned"
	TypePayrollPaid        = "payroll_paid"
	TypePendingHoursDigest = "pending_hours_digest"
)

const (
	EntityWorkingHours = "working_hours"
	EntityRoster       = "roster"
	EntityPayroll      = "payroll"
)
