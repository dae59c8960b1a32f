package availability

import "time"

type WindowInput struct {
	DayOfWeek int    `json:"day_of_week" validate:"min=0,max=6"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
	IsActive  *bool  `json:"is_active"`
}

type SetAvailabilityRequest struct {
	Windows []WindowInput `json:"windows"`
}

type WindowPublic struct {
	ID        int64  `json:"id"`
	DayOfWeek int    `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsActive  bool   `json:"is_active"`
}

type Slot struct {
	StartAt  time.Time `json:"start_at"`
	IsBooked bool      `json:"is_booked"`
	IsPast   bool      `json:"is_past"`
}

type DaySlots struct {
	MentorID int64  `json:"mentor_id"`
	Date     string `json:"date"`
	Slots    []Slot `json:"slots"`
}
