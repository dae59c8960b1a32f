package availability

import (
	"context"
	"time"

	"mentorhub/internal/domain"
)

// AvailabilityRepository stores the weekly window sets.
type AvailabilityRepository interface {
	ReplaceForMentor(ctx context.Context, mentorID int64, windows []domain.AvailabilityWindow) error
	ListByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilityWindow, error)
	ListActiveForDay(ctx context.Context, mentorID int64, dayOfWeek int) ([]domain.AvailabilityWindow, error)
}

// AppointmentReader supplies booked intervals for slot projection.
type AppointmentReader interface {
	ListOverlapping(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.Appointment, error)
}

// UserReader verifies the mentor exists before projecting slots.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// SlotCache is an optional byte cache for projected day slots.
type SlotCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}
