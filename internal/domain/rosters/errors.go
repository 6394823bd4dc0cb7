package rosters

import "errors"

var (
	ErrNameRequired            = errors.New("roster name is required")
	ErrProjectRequired         = errors.New("project is required")
	ErrProjectNotFound         = errors.New("project not found")
	ErrDatesRequired           = errors.New("start and end dates are required")
	ErrDateOrder               = errors.New("end date precedes start date")
	ErrRangeTooLong            = errors.New("roster spans too many days")
	ErrTimesRequired           = errors.New("start and end times are required")
	ErrInvalidStatus           = errors.New("invalid roster status")
	ErrNotDraft                = errors.New("roster is not a draft")
	ErrClosed                  = errors.New("roster is completed or cancelled")
	ErrNotAssigned             = errors.New("profile is not assigned to roster")
	ErrInvalidAssignmentStatus = errors.New("invalid assignment status")
	ErrNotAssignee             = errors.New("only the assigned profile may respond")
	ErrNoProfiles              = errors.New("no profiles given")
)
