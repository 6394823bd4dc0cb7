package workhours

import "errors"

var (
	ErrNotPending      = errors.New("entry is no longer pending")
	ErrNotOwner        = errors.New("entry belongs to another profile")
	ErrInvalidCategory = errors.New("invalid category")
	ErrProjectRequired = errors.New("project is required")
	ErrDateRequired    = errors.New("work date is required")
	ErrReasonRequired  = errors.New("rejection reason is required")
	ErrNegativeRate    = errors.New("hourly rate must not be negative")
	ErrNoTimes         = errors.New("scheduled or actual times are required")
	ErrTooManyEntries  = errors.New("too many entries in one request")
	ErrProjectNotFound = errors.New("project not found")
	ErrClientMismatch  = errors.New("client does not own project")
	ErrRateNotAllowed  = errors.New("only approvers may set an hourly rate")
)
