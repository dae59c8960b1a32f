package domain

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

// CanTransitionTo reports whether the lifecycle allows moving to next.
// Completed and Cancelled are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case AppointmentPending:
		return next == AppointmentConfirmed || next == AppointmentCancelled
	case AppointmentConfirmed:
		return next == AppointmentCompleted || next == AppointmentCancelled
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is defined.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentCompleted || s == AppointmentCancelled
}

type Appointment struct {
	ID           int64             `json:"id"`
	MentorID     int64             `json:"mentor_id" validate:"required"`
	MenteeID     int64             `json:"mentee_id" validate:"required"`
	StartAt      time.Time         `json:"start_at" validate:"required"`
	EndAt        time.Time         `json:"end_at" validate:"required"`
	Status       AppointmentStatus `json:"status"`
	MeetingLink  string            `json:"meeting_link,omitempty"`
	CalendarLink string            `json:"calendar_link,omitempty"`
	IsPaid       bool              `json:"is_paid"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
	CancelledAt  *time.Time        `json:"cancelled_at,omitempty"`
}

// Overlaps applies the half-open interval rule to [from, to).
func (a Appointment) Overlaps(from, to time.Time) bool {
	return a.StartAt.Before(to) && a.EndAt.After(from)
}
