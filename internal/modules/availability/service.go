package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"mentorhub/internal/domain"

	"gorm.io/gorm"
)

type Service struct {
	windows      AvailabilityRepository
	appointments AppointmentReader
	users        UserReader
	cache        SlotCache // nil disables caching

	now func() time.Time
}

func NewService(windows AvailabilityRepository, appointments AppointmentReader, users UserReader, cache SlotCache) *Service {
	return &Service{
		windows:      windows,
		appointments: appointments,
		users:        users,
		cache:        cache,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// SetWeeklyAvailability validates and atomically replaces the mentor's whole
// weekly window set. On any validation failure nothing is written.
func (s *Service) SetWeeklyAvailability(ctx context.Context, mentorID int64, req SetAvailabilityRequest) ([]domain.AvailabilityWindow, error) {
	windows := make([]domain.AvailabilityWindow, 0, len(req.Windows))
	for _, in := range req.Windows {
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		windows = append(windows, domain.AvailabilityWindow{
			MentorID:  mentorID,
			DayOfWeek: in.DayOfWeek,
			StartTime: in.StartTime,
			EndTime:   in.EndTime,
			IsActive:  active,
		})
	}

	if err := validateWindowSet(windows); err != nil {
		return nil, err
	}

	if err := s.windows.ReplaceForMentor(ctx, mentorID, windows); err != nil {
		return nil, err
	}

	s.invalidateSlots(ctx, mentorID)

	return s.windows.ListByMentor(ctx, mentorID)
}

func (s *Service) GetWeeklyAvailability(ctx context.Context, mentorID int64) ([]domain.AvailabilityWindow, error) {
	return s.windows.ListByMentor(ctx, mentorID)
}

// validateWindowSet applies the window rules: valid day, parseable times
// aligned to the slot granularity, start strictly before end, and no overlap
// between windows on the same day.
func validateWindowSet(windows []domain.AvailabilityWindow) error {
	type bounds struct {
		idx        int
		start, end time.Duration
	}
	perDay := make(map[int][]bounds)

	for i, w := range windows {
		if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
			return fmt.Errorf("%w: window %d: day_of_week %d is out of range", ErrValidation, i, w.DayOfWeek)
		}

		start, err := parseAlignedTime(w.StartTime)
		if err != nil {
			return fmt.Errorf("%w: window %d (%s): %v", ErrValidation, i, domain.DayName(w.DayOfWeek), err)
		}
		end, err := parseAlignedTime(w.EndTime)
		if err != nil {
			return fmt.Errorf("%w: window %d (%s): %v", ErrValidation, i, domain.DayName(w.DayOfWeek), err)
		}
		if start >= end {
			return fmt.Errorf("%w: window %d (%s): start %s must be before end %s",
				ErrValidation, i, domain.DayName(w.DayOfWeek), w.StartTime, w.EndTime)
		}

		perDay[w.DayOfWeek] = append(perDay[w.DayOfWeek], bounds{idx: i, start: start, end: end})
	}

	for day, list := range perDay {
		sort.Slice(list, func(i, j int) bool { return list[i].start < list[j].start })
		for i := 1; i < len(list); i++ {
			prev, cur := list[i-1], list[i]
			if cur.start < prev.end {
				return fmt.Errorf("%w: windows %d and %d overlap on %s",
					ErrValidation, prev.idx, cur.idx, domain.DayName(day))
			}
		}
	}
	return nil
}

func parseAlignedTime(value string) (time.Duration, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("time %q is not in HH:MM form", value)
	}
	d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	if d%domain.SlotGranularity != 0 {
		return 0, fmt.Errorf("time %q is not aligned to %d-minute slots", value, int(domain.SlotGranularity.Minutes()))
	}
	return d, nil
}

// GetDaySlots projects the mentor's windows for one calendar date into slot
// instants. Every instant from window start through window end inclusive is
// emitted; a slot is booked when a non-cancelled appointment overlaps
// [instant, instant+granularity), and past only on the current date.
func (s *Service) GetDaySlots(ctx context.Context, mentorID int64, dateStr string) (*DaySlots, error) {
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q is not in YYYY-MM-DD form", ErrValidation, dateStr)
	}
	day = time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)

	if _, err := s.users.GetByID(ctx, mentorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMentorNotFound
		}
		return nil, err
	}

	cacheKey := fmt.Sprintf("slots:%d:%s", mentorID, dateStr)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var cached DaySlots
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	windows, err := s.windows.ListActiveForDay(ctx, mentorID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}

	dayStart := day
	dayEnd := day.Add(24 * time.Hour)
	booked, err := s.appointments.ListOverlapping(ctx, mentorID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	now := s.now()
	isToday := now.Format("2006-01-02") == dateStr

	out := &DaySlots{MentorID: mentorID, Date: dateStr, Slots: []Slot{}}
	for _, w := range windows {
		from, to, err := w.Bounds(day)
		if err != nil {
			return nil, err
		}
		for t := from; !t.After(to); t = t.Add(domain.SlotGranularity) {
			out.Slots = append(out.Slots, Slot{
				StartAt:  t,
				IsBooked: isBooked(t, booked),
				IsPast:   isToday && !t.After(now),
			})
		}
	}

	if s.cache != nil {
		if data, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, cacheKey, data); err != nil {
				log.Printf("slot_cache_set_failed mentor=%d date=%s err=%v", mentorID, dateStr, err)
			}
		}
	}

	return out, nil
}

// isBooked applies the half-open rule: the slot [t, t+granularity) is booked
// when it intersects any appointment interval. A slot starting exactly at an
// appointment's end stays free.
func isBooked(t time.Time, booked []domain.Appointment) bool {
	slotEnd := t.Add(domain.SlotGranularity)
	for _, a := range booked {
		if t.Before(a.EndAt) && slotEnd.After(a.StartAt) {
			return true
		}
	}
	return false
}

func (s *Service) invalidateSlots(ctx context.Context, mentorID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteByPrefix(ctx, fmt.Sprintf("slots:%d:", mentorID)); err != nil {
		log.Printf("slot_cache_invalidate_failed mentor=%d err=%v", mentorID, err)
	}
}

// InvalidateSlots drops cached projections for the mentor. Called by the
// booking flow after any appointment change.
func (s *Service) InvalidateSlots(ctx context.Context, mentorID int64) {
	s.invalidateSlots(ctx, mentorID)
}

func ToPublicWindows(windows []domain.AvailabilityWindow) []WindowPublic {
	out := make([]WindowPublic, 0, len(windows))
	for _, w := range windows {
		out = append(out, WindowPublic{
			ID:        w.ID,
			DayOfWeek: w.DayOfWeek,
			StartTime: w.StartTime,
			EndTime:   w.EndTime,
			IsActive:  w.IsActive,
		})
	}
	return out
}
