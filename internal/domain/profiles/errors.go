package profiles

import "errors"

var (
	ErrInvalidEmploymentType = errors.New("invalid employment type")
	ErrInvalidStatus         = errors.New("invalid profile status")
	ErrInvalidRole           = errors.New("invalid role")
	ErrNegativeRate          = errors.New("hourly rate must not be negative")
	ErrSelfDeactivate        = errors.New("cannot deactivate own profile")
	ErrSelfDemote            = errors.New("cannot change own role")
)
