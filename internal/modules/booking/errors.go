package booking

import "errors"

var (
	ErrValidation          = errors.New("validation error")
	ErrNotFound            = errors.New("appointment not found")
	ErrForbidden           = errors.New("not allowed for this user")
	ErrConflict            = errors.New("time slot already taken")
	ErrOutsideAvailability = errors.New("requested time is outside the mentor's availability")
	ErrMeetingProvider     = errors.New("meeting provider unavailable")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrTooEarly            = errors.New("session has not ended yet")
	ErrAlreadyCompleted    = errors.New("appointment already completed")
)
