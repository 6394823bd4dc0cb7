package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMFARequired        = errors.New("mfa code required")
	ErrMFAInvalid         = errors.New("invalid mfa code")
	ErrMFAUnavailable     = errors.New("mfa requires encryption key")
	ErrMFANotSetUp        = errors.New("mfa setup required")
	ErrMFAAlreadyEnabled  = errors.New("mfa already enabled; disable it before setting up again")
	ErrSessionExpired     = errors.New("session expired")
	ErrUnknownRole        = errors.New("unknown role")
	ErrUnknownPermission  = errors.New("unknown permission")
	ErrAdminLockout       = errors.New("admin must keep permissions.manage")
	ErrWeakPassword       = errors.New("password must be at least 8 characters with upper, lower case letters and a digit")
)
