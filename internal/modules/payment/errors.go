package payment

import "errors"

var (
	ErrNotFound  = errors.New("appointment not found")
	ErrForbidden = errors.New("not allowed for this user")
	ErrNotDue    = errors.New("appointment has no payment due")
)
