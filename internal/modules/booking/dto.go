package booking

import (
	"time"

	"mentorhub/internal/domain"
)

type CreateAppointmentRequest struct {
	MentorID int64     `json:"mentor_id" binding:"required"`
	StartAt  time.Time `json:"start_at" binding:"required"`
	EndAt    time.Time `json:"end_at" binding:"required"`
}

type AppointmentPublic struct {
	ID           int64      `json:"id"`
	MentorID     int64      `json:"mentor_id"`
	MenteeID     int64      `json:"mentee_id"`
	StartAt      time.Time  `json:"start_at"`
	EndAt        time.Time  `json:"end_at"`
	Status       string     `json:"status"`
	MeetingLink  string     `json:"meeting_link,omitempty"`
	CalendarLink string     `json:"calendar_link,omitempty"`
	IsPaid       bool       `json:"is_paid"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
}

func toPublic(a *domain.Appointment) AppointmentPublic {
	return AppointmentPublic{
		ID:           a.ID,
		MentorID:     a.MentorID,
		MenteeID:     a.MenteeID,
		StartAt:      a.StartAt,
		EndAt:        a.EndAt,
		Status:       string(a.Status),
		MeetingLink:  a.MeetingLink,
		CalendarLink: a.CalendarLink,
		IsPaid:       a.IsPaid,
		CancelledAt:  a.CancelledAt,
	}
}
