package booking

import (
	"context"
	"time"

	"mentorhub/internal/domain"
	"mentorhub/internal/meeting"
)

// AppointmentRepository defines the storage operations the booking service
// needs.
type AppointmentRepository interface {
	CreateIfFree(ctx context.Context, a *domain.Appointment) error
	GetByID(ctx context.Context, id int64) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error
	SetMeetingLinks(ctx context.Context, id int64, meetingLink, calendarLink string) error
	ListByMentor(ctx context.Context, mentorID int64) ([]domain.Appointment, error)
	ListByMentee(ctx context.Context, menteeID int64) ([]domain.Appointment, error)
}

// AvailabilityReader supplies active windows for the requested day.
type AvailabilityReader interface {
	ListActiveForDay(ctx context.Context, mentorID int64, dayOfWeek int) ([]domain.AvailabilityWindow, error)
}

// UserReader loads the participants.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// MeetingProvider creates the video meeting on confirmation.
type MeetingProvider interface {
	CreateMeeting(ctx context.Context, startAt, endAt time.Time, mentorEmail, menteeEmail string) (*meeting.Links, error)
}

// Notifier emails the parties about lifecycle events. All methods are best
// effort.
type Notifier interface {
	NotifyBookingRequested(a *domain.Appointment, mentor, mentee *domain.User)
	NotifyBookingConfirmed(a *domain.Appointment, mentor, mentee *domain.User)
	NotifyBookingCancelled(a *domain.Appointment, mentor, mentee *domain.User, cancelledBy int64)
}

// SlotInvalidator drops cached slot projections after appointment changes.
type SlotInvalidator interface {
	InvalidateSlots(ctx context.Context, mentorID int64)
}
