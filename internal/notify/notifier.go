package notify

import (
	"fmt"
	"log"
	"time"

	"mentorhub/internal/domain"
)

// BookingNotifier emails both parties about lifecycle events. All sends are
// best effort: a failed email never fails the operation that triggered it.
type BookingNotifier struct {
	mailer Mailer
}

func NewBookingNotifier(mailer Mailer) *BookingNotifier {
	return &BookingNotifier{mailer: mailer}
}

func (n *BookingNotifier) NotifyBookingRequested(a *domain.Appointment, mentor, mentee *domain.User) {
	subject := "New session request"
	body := fmt.Sprintf(
		"%s requested a session with you on %s.\nAccept or decline it in your dashboard.",
		mentee.Name, formatSlot(a.StartAt, a.EndAt),
	)
	n.send(mentor.Email, subject, body)
}

func (n *BookingNotifier) NotifyBookingConfirmed(a *domain.Appointment, mentor, mentee *domain.User) {
	subject := "Session confirmed"
	body := fmt.Sprintf(
		"Your session with %s on %s is confirmed.\nMeeting link: %s",
		mentor.Name, formatSlot(a.StartAt, a.EndAt), a.MeetingLink,
	)
	n.send(mentee.Email, subject, body)
}

func (n *BookingNotifier) NotifyBookingCancelled(a *domain.Appointment, mentor, mentee *domain.User, cancelledBy int64) {
	subject := "Session cancelled"
	body := fmt.Sprintf("The session on %s was cancelled.", formatSlot(a.StartAt, a.EndAt))

	if cancelledBy == mentor.ID {
		n.send(mentee.Email, subject, body)
	} else {
		n.send(mentor.Email, subject, body)
	}
}

func (n *BookingNotifier) NotifySessionReminder(a *domain.Appointment, mentor, mentee *domain.User) {
	subject := "Session starting soon"
	body := fmt.Sprintf(
		"Reminder: your session starts at %s.\nMeeting link: %s",
		a.StartAt.UTC().Format("15:04 MST"), a.MeetingLink,
	)
	n.send(mentor.Email, subject, body)
	n.send(mentee.Email, subject, body)
}

func (n *BookingNotifier) send(to, subject, body string) {
	if err := n.mailer.Send(to, subject, body); err != nil {
		log.Printf("notify_failed to=%s subject=%q err=%v", to, subject, err)
	}
}

func formatSlot(from, to time.Time) string {
	return fmt.Sprintf("%s, %s-%s UTC",
		from.UTC().Format("Mon 2 Jan 2006"),
		from.UTC().Format("15:04"),
		to.UTC().Format("15:04"),
	)
}
