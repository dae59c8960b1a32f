package domain

import (
	"fmt"
	"time"
)

// SlotGranularity is the fixed step between bookable slot instants.
// All window boundaries must be aligned to it.
const SlotGranularity = 15 * time.Minute

// AvailabilityWindow is one recurring weekly time range during which a
// mentor is bookable. StartTime/EndTime are times of day in "15:04" form.
type AvailabilityWindow struct {
	ID        int64     `json:"id"`
	MentorID  int64     `json:"mentor_id"`
	DayOfWeek int       `json:"day_of_week"` // 0=Sunday .. 6=Saturday
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Bounds projects the window onto a concrete calendar day in UTC.
func (w AvailabilityWindow) Bounds(day time.Time) (time.Time, time.Time, error) {
	open, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time %q: %w", w.StartTime, err)
	}
	close, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time %q: %w", w.EndTime, err)
	}

	from := time.Date(day.Year(), day.Month(), day.Day(), open.Hour(), open.Minute(), 0, 0, time.UTC)
	to := time.Date(day.Year(), day.Month(), day.Day(), close.Hour(), close.Minute(), 0, 0, time.UTC)
	return from, to, nil
}

func DayName(dayOfWeek int) string {
	switch time.Weekday(dayOfWeek) {
	case time.Monday:
		return "monday"
	case time.Tuesday:
		return "tuesday"
	case time.Wednesday:
		return "wednesday"
	case time.Thursday:
		return "thursday"
	case time.Friday:
		return "friday"
	case time.Saturday:
		return "saturday"
	default:
		return "sunday"
	}
}
