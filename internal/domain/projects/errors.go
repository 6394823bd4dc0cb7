package projects

import "errors"

var (
	ErrNameRequired   = errors.New("project name is required")
	ErrClientRequired = errors.New("client is required")
	ErrStartRequired  = errors.New("start date is required")
	ErrDateOrder      = errors.New("end date precedes start date")
	ErrInvalidStatus  = errors.New("invalid project status")
	ErrNegativeBudget = errors.New("budget must not be negative")
	ErrHasHours       = errors.New("project has working hours")
)
