package domain

import "errors"

var (
	ErrMissingCredential = errors.New("missing credential")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrForbidden         = errors.New("admin access required")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrReservedProperty  = errors.New("reserved property")
	ErrInvalidProperty   = errors.New("invalid property name")
	ErrRateLimited       = errors.New("rate limit exceeded")
)
