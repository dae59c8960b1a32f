package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mentorhub/internal/domain"
	"mentorhub/internal/repository"

	"gorm.io/gorm"
)

type Service struct {
	appointments AppointmentRepository
	windows      AvailabilityReader
	users        UserReader
	meetings     MeetingProvider
	notifs       Notifier        // optional
	slots        SlotInvalidator // optional

	locker         *mentorLocker
	meetingTimeout time.Duration
	now            func() time.Time
}

func NewService(
	appointments AppointmentRepository,
	windows AvailabilityReader,
	users UserReader,
	meetings MeetingProvider,
	notifs Notifier,
	slots SlotInvalidator,
	meetingTimeout time.Duration,
) *Service {
	if meetingTimeout <= 0 {
		meetingTimeout = 10 * time.Second
	}
	return &Service{
		appointments:   appointments,
		windows:        windows,
		users:          users,
		meetings:       meetings,
		notifs:         notifs,
		slots:          slots,
		locker:         newMentorLocker(),
		meetingTimeout: meetingTimeout,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// RequestBooking creates a pending appointment for the mentee. The requested
// interval must be aligned to the slot granularity, lie in the future, fit
// inside one of the mentor's active windows, and be free of competing
// non-cancelled appointments. Requests for the same mentor are serialized.
func (s *Service) RequestBooking(ctx context.Context, menteeID int64, req CreateAppointmentRequest) (*domain.Appointment, error) {
	startAt := req.StartAt.UTC()
	endAt := req.EndAt.UTC()

	if !endAt.After(startAt) {
		return nil, fmt.Errorf("%w: end must be after start", ErrValidation)
	}
	if !aligned(startAt) || !aligned(endAt) {
		return nil, fmt.Errorf("%w: times must be aligned to %d-minute slots",
			ErrValidation, int(domain.SlotGranularity.Minutes()))
	}
	if !startAt.After(s.now()) {
		return nil, fmt.Errorf("%w: start must be in the future", ErrValidation)
	}
	if req.MentorID == menteeID {
		return nil, fmt.Errorf("%w: cannot book a session with yourself", ErrValidation)
	}

	mentor, err := s.users.GetByID(ctx, req.MentorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if mentor.Role != domain.RoleMentor {
		return nil, fmt.Errorf("%w: user %d is not a mentor", ErrValidation, req.MentorID)
	}

	ok, err := s.withinAvailability(ctx, req.MentorID, startAt, endAt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrOutsideAvailability
	}

	a := &domain.Appointment{
		MentorID: req.MentorID,
		MenteeID: menteeID,
		StartAt:  startAt,
		EndAt:    endAt,
		Status:   domain.AppointmentPending,
	}

	unlock := s.locker.lock(req.MentorID)
	err = s.appointments.CreateIfFree(ctx, a)
	unlock()
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.invalidate(ctx, req.MentorID)

	if s.notifs != nil {
		if mentee, err := s.users.GetByID(ctx, menteeID); err == nil {
			s.notifs.NotifyBookingRequested(a, mentor, mentee)
		}
	}

	return a, nil
}

// withinAvailability reports whether [startAt, endAt] fits inside a single
// active window on the appointment's weekday. Spanning two adjacent windows
// does not count.
func (s *Service) withinAvailability(ctx context.Context, mentorID int64, startAt, endAt time.Time) (bool, error) {
	windows, err := s.windows.ListActiveForDay(ctx, mentorID, int(startAt.Weekday()))
	if err != nil {
		return false, err
	}

	for _, w := range windows {
		from, to, err := w.Bounds(startAt)
		if err != nil {
			return false, err
		}
		if !startAt.Before(from) && !endAt.After(to) {
			return true, nil
		}
	}
	return false, nil
}

func aligned(t time.Time) bool {
	return t.Truncate(domain.SlotGranularity).Equal(t)
}

// AcceptBooking confirms a pending appointment. The meeting is created first;
// if the provider fails the appointment stays pending so the mentor can
// retry.
func (s *Service) AcceptBooking(ctx context.Context, mentorID, appointmentID int64) (*domain.Appointment, error) {
	a, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.MentorID != mentorID {
		return nil, ErrForbidden
	}
	if a.Status != domain.AppointmentPending {
		return nil, ErrInvalidTransition
	}

	mentor, err := s.users.GetByID(ctx, a.MentorID)
	if err != nil {
		return nil, err
	}
	mentee, err := s.users.GetByID(ctx, a.MenteeID)
	if err != nil {
		return nil, err
	}

	mctx, cancel := context.WithTimeout(ctx, s.meetingTimeout)
	links, err := s.meetings.CreateMeeting(mctx, a.StartAt, a.EndAt, mentor.Email, mentee.Email)
	cancel()
	if err != nil {
		log.Printf("meeting_create_failed appointment=%d err=%v", a.ID, err)
		return nil, ErrMeetingProvider
	}

	if err := s.appointments.SetMeetingLinks(ctx, a.ID, links.MeetingLink, links.CalendarLink); err != nil {
		return nil, err
	}
	if err := s.appointments.UpdateStatus(ctx, a.ID, domain.AppointmentConfirmed); err != nil {
		return nil, err
	}

	a, err = s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, a.MentorID)

	if s.notifs != nil {
		s.notifs.NotifyBookingConfirmed(a, mentor, mentee)
	}

	return a, nil
}

// CancelBooking cancels a pending or confirmed appointment. Either
// participant may cancel.
func (s *Service) CancelBooking(ctx context.Context, actorID, appointmentID int64) (*domain.Appointment, error) {
	a, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.MentorID != actorID && a.MenteeID != actorID {
		return nil, ErrForbidden
	}
	if !a.Status.CanTransitionTo(domain.AppointmentCancelled) {
		return nil, ErrInvalidTransition
	}

	if err := s.appointments.UpdateStatus(ctx, a.ID, domain.AppointmentCancelled); err != nil {
		return nil, err
	}

	a, err = s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, a.MentorID)

	if s.notifs != nil {
		mentor, merr := s.users.GetByID(ctx, a.MentorID)
		mentee, eerr := s.users.GetByID(ctx, a.MenteeID)
		if merr == nil && eerr == nil {
			s.notifs.NotifyBookingCancelled(a, mentor, mentee, actorID)
		}
	}

	return a, nil
}

// CompleteBooking marks a confirmed appointment completed. Only the mentor
// may complete, and only after the session has ended.
func (s *Service) CompleteBooking(ctx context.Context, mentorID, appointmentID int64) (*domain.Appointment, error) {
	a, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.MentorID != mentorID {
		return nil, ErrForbidden
	}
	if a.Status == domain.AppointmentCompleted {
		return nil, ErrAlreadyCompleted
	}
	if a.Status != domain.AppointmentConfirmed {
		return nil, ErrInvalidTransition
	}
	if s.now().Before(a.EndAt) {
		return nil, ErrTooEarly
	}

	if err := s.appointments.UpdateStatus(ctx, a.ID, domain.AppointmentCompleted); err != nil {
		return nil, err
	}
	return s.appointments.GetByID(ctx, a.ID)
}

// GetAppointment returns the appointment if the actor participates in it.
func (s *Service) GetAppointment(ctx context.Context, actorID, appointmentID int64) (*domain.Appointment, error) {
	a, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.MentorID != actorID && a.MenteeID != actorID {
		return nil, ErrForbidden
	}
	return a, nil
}

func (s *Service) ListMyAppointments(ctx context.Context, userID int64, role domain.UserRole) ([]domain.Appointment, error) {
	if role == domain.RoleMentor {
		return s.appointments.ListByMentor(ctx, userID)
	}
	return s.appointments.ListByMentee(ctx, userID)
}

func (s *Service) getAppointment(ctx context.Context, id int64) (*domain.Appointment, error) {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *Service) invalidate(ctx context.Context, mentorID int64) {
	if s.slots != nil {
		s.slots.InvalidateSlots(ctx, mentorID)
	}
}
