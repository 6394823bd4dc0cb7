package banking

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

var AccountStatuses = []string{StatusActive, StatusInactive}

const (
	TypeDeposit    = "deposit"
	TypeWithdrawal = "withdrawal"
)

var TransactionTypes = []string{TypeDeposit, TypeWithdrawal}

const (
	CategoryPayroll       = "payroll"
	CategoryClientPayment = "client_payment"
	CategoryExpense       = "expense"
	CategoryTransfer      = "transfer"
	CategoryOther         = "other"
)

var Categories = []string{CategoryPayroll, CategoryClientPayment, CategoryExpense, CategoryTransfer, CategoryOther}
