package banking

import "errors"

var (
	ErrBankNameRequired    = errors.New("bank name is required")
	ErrAccountNameRequired = errors.New("account name is required")
	ErrInvalidStatus       = errors.New("invalid account status")
	ErrInvalidCurrency     = errors.New("currency must be a three-letter code")
	ErrInvalidType         = errors.New("transaction type must be deposit or withdrawal")
	ErrInvalidCategory     = errors.New("invalid transaction category")
	ErrNonPositiveAmount   = errors.New("amount must be greater than zero")
	ErrDateRequired        = errors.New("transaction date is required")
	ErrAccountInactive     = errors.New("bank account is inactive")
	ErrPayrollLinked       = errors.New("transaction belongs to a paid payroll record")
	ErrInvalidReference    = errors.New("reference must not contain whitespace")
)
