package payroll

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusPaid     = "paid"
)

var Statuses = []string{StatusPending, StatusApproved, StatusPaid}

const (
	SkipNotPending = "not_pending"

	// TransactionCategoryPayroll tags the bank withdrawal behind a payment.
	TransactionCategoryPayroll = "payroll"

	payslipContentType = "application/pdf"
)
