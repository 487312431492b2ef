package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrTeamNotResolved       = errors.New("user team not resolved")
	ErrRefreshInProgress     = errors.New("full refresh already in progress")
)
