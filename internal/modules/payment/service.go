package payment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"mentorhub/internal/domain"

	"gorm.io/gorm"
)

// lookback is how far back the bank feed is searched during verification.
const lookback = 7 * 24 * time.Hour

type Service struct {
	appointments AppointmentRepository
	users        UserReader
	feed         BankFeed
	loggerf      func(format string, args ...interface{})

	now func() time.Time
}

func NewService(appointments AppointmentRepository, users UserReader, feed BankFeed, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		appointments: appointments,
		users:        users,
		feed:         feed,
		loggerf:      loggerf,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// ComputeDue converts the session length and the mentor's hourly rate into
// the amount owed, in minor currency units. Duration is rounded to two
// decimal hours first, then the product is rounded to a whole unit.
func ComputeDue(duration time.Duration, hourlyRate int64) int64 {
	hours := math.Round(duration.Hours()*100) / 100
	return int64(math.Round(hours * float64(hourlyRate)))
}

// PaymentCode builds the deterministic transfer reference the mentee must
// put into the bank transfer. It carries the mentor's name fragment so the
// mentor can recognize their own codes in a bank statement. Same
// appointment, same code.
func PaymentCode(a *domain.Appointment, mentor *domain.User) string {
	return fmt.Sprintf("MNT-%s-%d", nameFragment(mentor.Name), a.ID)
}

// nameFragment keeps the first four letters of the name, uppercased. Falls
// back to "X" for names without letters.
func nameFragment(name string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(name) {
		if r >= 'A' && r <= 'Z' {
			b.WriteRune(r)
			if b.Len() >= 4 {
				break
			}
		}
	}
	if b.Len() == 0 {
		return "X"
	}
	return b.String()
}

// GetPaymentInfo returns the amount due and the transfer code. Only the
// appointment's participants may ask.
func (s *Service) GetPaymentInfo(ctx context.Context, actorID, appointmentID int64) (*PaymentInfo, error) {
	a, mentor, err := s.loadForActor(ctx, actorID, appointmentID)
	if err != nil {
		return nil, err
	}

	return &PaymentInfo{
		AppointmentID: a.ID,
		AmountDue:     ComputeDue(a.EndAt.Sub(a.StartAt), mentor.HourlyRate),
		PaymentCode:   PaymentCode(a, mentor),
		IsPaid:        a.IsPaid,
	}, nil
}

// VerifyPayment searches the recent bank feed for a transfer of the exact
// amount whose content mentions the payment code. The result is advisory
// and nothing is written: is_paid only flips through the mentor's explicit
// MarkPaid. A feed outage is reported as unpaid, never as an error.
func (s *Service) VerifyPayment(ctx context.Context, actorID, appointmentID int64) (*VerifyResult, error) {
	a, mentor, err := s.loadForActor(ctx, actorID, appointmentID)
	if err != nil {
		return nil, err
	}

	if a.IsPaid {
		return &VerifyResult{AppointmentID: a.ID, Paid: true}, nil
	}

	matched, err := s.match(ctx, a, mentor)
	if err != nil {
		return nil, err
	}
	if matched {
		s.loggerf("level=info msg=payment matched appointment_id=%d", a.ID)
	}
	return &VerifyResult{AppointmentID: a.ID, Paid: matched}, nil
}

// match searches the recent feed for a transfer with the exact amount whose
// content mentions the payment code. It never writes.
func (s *Service) match(ctx context.Context, a *domain.Appointment, mentor *domain.User) (bool, error) {
	amount := ComputeDue(a.EndAt.Sub(a.StartAt), mentor.HourlyRate)
	code := PaymentCode(a, mentor)

	to := s.now()
	from := to.Add(-lookback)

	txs, err := s.feed.ListTransactions(ctx, from, to, amount)
	if err != nil {
		s.loggerf("level=error msg=bank feed unavailable appointment_id=%d err=%v", a.ID, err)
		return false, nil
	}

	for _, tx := range txs {
		if tx.Amount != amount {
			continue
		}
		if strings.Contains(strings.ToUpper(tx.Content), code) {
			return true, nil
		}
	}
	return false, nil
}

// CheckForAppointment is the reconciliation-sweep entry point. It only
// reports whether a matching transfer exists; flipping is_paid stays with
// the mentor override.
func (s *Service) CheckForAppointment(ctx context.Context, a *domain.Appointment) (bool, error) {
	mentor, err := s.users.GetByID(ctx, a.MentorID)
	if err != nil {
		return false, err
	}
	return s.match(ctx, a, mentor)
}

// ListUnreconciled returns completed appointments still awaiting payment.
func (s *Service) ListUnreconciled(ctx context.Context) ([]domain.Appointment, error) {
	return s.appointments.ListCompletedUnpaid(ctx)
}

// MarkPaid is the mentor's manual override for transfers the feed cannot
// match, e.g. cash or a mistyped code.
func (s *Service) MarkPaid(ctx context.Context, mentorID, appointmentID int64) (*PaymentInfo, error) {
	a, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if a.MentorID != mentorID {
		return nil, ErrForbidden
	}
	if a.Status != domain.AppointmentConfirmed && a.Status != domain.AppointmentCompleted {
		return nil, ErrNotDue
	}

	if !a.IsPaid {
		if err := s.appointments.MarkPaid(ctx, a.ID); err != nil {
			return nil, err
		}
		s.loggerf("level=info msg=payment marked manually appointment_id=%d mentor_id=%d", a.ID, mentorID)
	}

	return s.GetPaymentInfo(ctx, mentorID, appointmentID)
}

func (s *Service) loadForActor(ctx context.Context, actorID, appointmentID int64) (*domain.Appointment, *domain.User, error) {
	a, err := s.getAppointment(ctx, appointmentID)
	if err != nil {
		return nil, nil, err
	}
	if a.MentorID != actorID && a.MenteeID != actorID {
		return nil, nil, ErrForbidden
	}

	mentor, err := s.users.GetByID(ctx, a.MentorID)
	if err != nil {
		return nil, nil, err
	}
	return a, mentor, nil
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
