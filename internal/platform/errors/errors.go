package apperrors

import "errors"

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrNoActiveSession     = errors.New("no active fast")
	ErrActiveSessionExists = errors.New("a fast is already in progress")
	ErrUnauthenticated     = errors.New("not signed in")
	ErrNotHydrated         = errors.New("fasting state not hydrated yet")
)
