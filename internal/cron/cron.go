package cron

import (
	"context"
	"log"
	"sync"
	"time"

	"mentorhub/internal/domain"
	"mentorhub/internal/modules/payment"

	"github.com/robfig/cron/v3"
)

// AppointmentSource lists appointments the sweeps care about.
type AppointmentSource interface {
	ListConfirmedStartingBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
}

// UserReader loads the participants for reminder emails.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

// ReminderNotifier sends the session reminder to both parties.
type ReminderNotifier interface {
	NotifySessionReminder(a *domain.Appointment, mentor, mentee *domain.User)
}

// Scheduler runs the periodic sweeps: session reminders every minute and
// payment reconciliation every ten minutes.
type Scheduler struct {
	cron         *cron.Cron
	appointments AppointmentSource
	users        UserReader
	payments     *payment.Service
	notifs       ReminderNotifier

	mu       sync.Mutex
	reminded map[int64]struct{}
}

func NewScheduler(appointments AppointmentSource, users UserReader, payments *payment.Service, notifs ReminderNotifier) *Scheduler {
	return &Scheduler{
		cron:         cron.New(),
		appointments: appointments,
		users:        users,
		payments:     payments,
		notifs:       notifs,
		reminded:     make(map[int64]struct{}),
	}
}

func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("* * * * *", s.sendReminders); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/10 * * * *", s.reconcilePayments); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// sendReminders emails both parties for confirmed sessions starting in
// roughly an hour. The window is wider than the tick so a slow run cannot
// skip an appointment; the reminded set keeps it to one email per session.
func (s *Scheduler) sendReminders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now().UTC()
	from := now.Add(55 * time.Minute)
	to := now.Add(65 * time.Minute)

	list, err := s.appointments.ListConfirmedStartingBetween(ctx, from, to)
	if err != nil {
		log.Printf("reminder_sweep_failed err=%v", err)
		return
	}

	for i := range list {
		a := &list[i]
		if s.alreadyReminded(a.ID) {
			continue
		}

		mentor, merr := s.users.GetByID(ctx, a.MentorID)
		mentee, eerr := s.users.GetByID(ctx, a.MenteeID)
		if merr != nil || eerr != nil {
			log.Printf("reminder_load_failed appointment=%d", a.ID)
			continue
		}

		s.notifs.NotifySessionReminder(a, mentor, mentee)
	}
}

// alreadyReminded records the appointment on first sight so each session
// gets exactly one reminder per process lifetime.
func (s *Scheduler) alreadyReminded(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reminded[id]; ok {
		return true
	}
	s.reminded[id] = struct{}{}
	return false
}

// reconcilePayments checks completed unpaid appointments against the bank
// feed and logs the matches. Flipping is_paid stays a user action.
func (s *Scheduler) reconcilePayments() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	list, err := s.payments.ListUnreconciled(ctx)
	if err != nil {
		log.Printf("reconcile_sweep_failed err=%v", err)
		return
	}

	for i := range list {
		a := &list[i]
		matched, err := s.payments.CheckForAppointment(ctx, a)
		if err != nil {
			log.Printf("reconcile_check_failed appointment=%d err=%v", a.ID, err)
			continue
		}
		if matched {
			log.Printf("reconcile_match appointment=%d", a.ID)
		}
	}
}
