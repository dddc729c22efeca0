package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAlreadyRunning        = errors.New("tracker already running")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
