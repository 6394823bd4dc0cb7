package payroll

import "errors"

var (
	ErrPeriodRequired     = errors.New("period start and end are required")
	ErrPeriodOrder        = errors.New("period end precedes start")
	ErrNegativeDeductions = errors.New("deductions must not be negative")
	ErrNotPending         = errors.New("payroll record is not pending")
	ErrNotApproved        = errors.New("payroll record is not approved")
	ErrBankAccountNeeded  = errors.New("bank account is required")
	ErrBankAccountUnknown = errors.New("bank account not found or inactive")
	ErrNonPositiveNet     = errors.New("net pay must be positive to pay out")
	ErrNotOwner           = errors.New("payroll record belongs to another profile")
)
