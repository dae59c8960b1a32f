package repository

import (
	"context"
	"errors"
	"time"

	"mentorhub/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrConflict is returned when an insert loses the overlap race: either the
// in-transaction recheck found a competing appointment or the database
// constraint rejected the row.
var ErrConflict = errors.New("appointment interval conflict")

type AppointmentRepository struct {
	db *gorm.DB
}

func NewAppointmentRepository(db *gorm.DB) *AppointmentRepository {
	return &AppointmentRepository{db: db}
}

type appointmentModel struct {
	ID           int64      `gorm:"column:id;primaryKey"`
	MentorID     int64      `gorm:"column:mentor_id;index:idx_appointments_mentor_start"`
	MenteeID     int64      `gorm:"column:mentee_id;index"`
	StartAt      time.Time  `gorm:"column:start_at;index:idx_appointments_mentor_start"`
	EndAt        time.Time  `gorm:"column:end_at"`
	Status       string     `gorm:"column:status"`
	MeetingLink  *string    `gorm:"column:meeting_link"`
	CalendarLink *string    `gorm:"column:calendar_link"`
	IsPaid       bool       `gorm:"column:is_paid"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`
}

func (appointmentModel) TableName() string { return "appointments" }

func toDomainAppointment(m appointmentModel) *domain.Appointment {
	var meeting, calendar string
	if m.MeetingLink != nil {
		meeting = *m.MeetingLink
	}
	if m.CalendarLink != nil {
		calendar = *m.CalendarLink
	}

	return &domain.Appointment{
		ID:           m.ID,
		MentorID:     m.MentorID,
		MenteeID:     m.MenteeID,
		StartAt:      m.StartAt,
		EndAt:        m.EndAt,
		Status:       domain.AppointmentStatus(m.Status),
		MeetingLink:  meeting,
		CalendarLink: calendar,
		IsPaid:       m.IsPaid,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
		CancelledAt:  m.CancelledAt,
	}
}

func toAppointmentModel(a *domain.Appointment) appointmentModel {
	var meeting, calendar *string
	if a.MeetingLink != "" {
		v := a.MeetingLink
		meeting = &v
	}
	if a.CalendarLink != "" {
		v := a.CalendarLink
		calendar = &v
	}

	return appointmentModel{
		ID:           a.ID,
		MentorID:     a.MentorID,
		MenteeID:     a.MenteeID,
		StartAt:      a.StartAt,
		EndAt:        a.EndAt,
		Status:       string(a.Status),
		MeetingLink:  meeting,
		CalendarLink: calendar,
		IsPaid:       a.IsPaid,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		CancelledAt:  a.CancelledAt,
	}
}

func (r *AppointmentRepository) Create(ctx context.Context, a *domain.Appointment) error {
	m := toAppointmentModel(a)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*a = *toDomainAppointment(m)
	return nil
}

// CreateIfFree inserts the appointment only if no non-cancelled appointment
// overlaps [StartAt, EndAt) for the mentor. On postgres the mentor's user row
// is locked for the duration of the transaction so that two concurrent
// requests for the same mentor cannot both pass the recheck; constraint
// violations from out-of-process writers are mapped to ErrConflict as well.
func (r *AppointmentRepository) CreateIfFree(ctx context.Context, a *domain.Appointment) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			var lockedID int64
			if err := tx.Raw(`SELECT id FROM users WHERE id = ? FOR UPDATE`, a.MentorID).Scan(&lockedID).Error; err != nil {
				return err
			}
		}

		var cnt int64
		err := tx.Model(&appointmentModel{}).
			Where("mentor_id = ? AND status <> ? AND start_at < ? AND end_at > ?",
				a.MentorID, string(domain.AppointmentCancelled), a.EndAt, a.StartAt).
			Count(&cnt).Error
		if err != nil {
			return err
		}
		if cnt > 0 {
			return ErrConflict
		}

		m := toAppointmentModel(a)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		*a = *toDomainAppointment(m)
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 unique violation, 23P01 exclusion violation
		if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01") {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	var m appointmentModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainAppointment(m), nil
}

// ListOverlapping returns the mentor's non-cancelled appointments whose
// interval intersects [from, to), ordered by start.
func (r *AppointmentRepository) ListOverlapping(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.Appointment, error) {
	var rows []appointmentModel
	tx := r.db.WithContext(ctx).
		Where("mentor_id = ? AND status <> ? AND start_at < ? AND end_at > ?",
			mentorID, string(domain.AppointmentCancelled), to, from).
		Order("start_at ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAppointment(m))
	}
	return out, nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	updates := map[string]any{
		"status":     string(status),
		"updated_at": time.Now().UTC(),
	}
	if status == domain.AppointmentCancelled {
		now := time.Now().UTC()
		updates["cancelled_at"] = &now
	}
	return r.db.WithContext(ctx).
		Model(&appointmentModel{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *AppointmentRepository) SetMeetingLinks(ctx context.Context, id int64, meetingLink, calendarLink string) error {
	return r.db.WithContext(ctx).
		Model(&appointmentModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"meeting_link":  meetingLink,
			"calendar_link": calendarLink,
			"updated_at":    time.Now().UTC(),
		}).Error
}

func (r *AppointmentRepository) MarkPaid(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).
		Model(&appointmentModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"is_paid":    true,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *AppointmentRepository) ListByMentor(ctx context.Context, mentorID int64) ([]domain.Appointment, error) {
	return r.listByColumn(ctx, "mentor_id", mentorID)
}

func (r *AppointmentRepository) ListByMentee(ctx context.Context, menteeID int64) ([]domain.Appointment, error) {
	return r.listByColumn(ctx, "mentee_id", menteeID)
}

func (r *AppointmentRepository) listByColumn(ctx context.Context, column string, id int64) ([]domain.Appointment, error) {
	var rows []appointmentModel
	tx := r.db.WithContext(ctx).
		Where(column+" = ?", id).
		Order("start_at DESC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAppointment(m))
	}
	return out, nil
}

// ListConfirmedStartingBetween feeds the reminder sweep.
func (r *AppointmentRepository) ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	var rows []appointmentModel
	tx := r.db.WithContext(ctx).
		Where("status = ? AND start_at BETWEEN ? AND ?", string(domain.AppointmentConfirmed), from, to).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAppointment(m))
	}
	return out, nil
}

// ListCompletedUnpaid feeds the reconciliation sweep.
func (r *AppointmentRepository) ListCompletedUnpaid(ctx context.Context) ([]domain.Appointment, error) {
	var rows []appointmentModel
	tx := r.db.WithContext(ctx).
		Where("status = ? AND is_paid = ?", string(domain.AppointmentCompleted), false).
		Order("end_at ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Appointment, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainAppointment(m))
	}
	return out, nil
}
