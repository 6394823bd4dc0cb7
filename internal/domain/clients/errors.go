package clients

import "errors"

var (
	ErrNameRequired  = errors.New("company name is required")
	ErrInvalidStatus = errors.New("invalid client status")
	ErrHasProjects   = errors.New("client has projects")
)
