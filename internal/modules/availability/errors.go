package availability

import "errors"

var (
	ErrValidation     = errors.New("validation error")
	ErrMentorNotFound = errors.New("mentor not found")
)
