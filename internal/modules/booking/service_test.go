package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mentorhub/internal/domain"
	"mentorhub/internal/meeting"
	"mentorhub/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Mock repositories
type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) CreateIfFree(ctx context.Context, a *domain.Appointment) error {
	args := m.Called(ctx, a)
	if a != nil && args.Error(0) == nil {
		a.ID = 999 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAppointmentRepository) SetMeetingLinks(ctx context.Context, id int64, meetingLink, calendarLink string) error {
	args := m.Called(ctx, id, meetingLink, calendarLink)
	return args.Error(0)
}

func (m *MockAppointmentRepository) ListByMentor(ctx context.Context, mentorID int64) ([]domain.Appointment, error) {
	args := m.Called(ctx, mentorID)
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) ListByMentee(ctx context.Context, menteeID int64) ([]domain.Appointment, error) {
	args := m.Called(ctx, menteeID)
	return args.Get(0).([]domain.Appointment), args.Error(1)
}

type MockAvailabilityReader struct {
	mock.Mock
}

func (m *MockAvailabilityReader) ListActiveForDay(ctx context.Context, mentorID int64, dayOfWeek int) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, mentorID, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

type MockUserReader struct {
	mock.Mock
}

func (m *MockUserReader) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

type MockMeetingProvider struct {
	mock.Mock
}

func (m *MockMeetingProvider) CreateMeeting(ctx context.Context, startAt, endAt time.Time, mentorEmail, menteeEmail string) (*meeting.Links, error) {
	args := m.Called(ctx, startAt, endAt, mentorEmail, menteeEmail)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*meeting.Links), args.Error(1)
}

type fixture struct {
	appts    *MockAppointmentRepository
	windows  *MockAvailabilityReader
	users    *MockUserReader
	meetings *MockMeetingProvider
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		appts:    new(MockAppointmentRepository),
		windows:  new(MockAvailabilityReader),
		users:    new(MockUserReader),
		meetings: new(MockMeetingProvider),
	}
	f.svc = NewService(f.appts, f.windows, f.users, f.meetings, nil, nil, time.Second)
	f.svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }
	return f
}

var (
	mentorUser = &domain.User{ID: 7, Role: domain.RoleMentor, Email: "mentor@example.com", HourlyRate: 100000}
	menteeUser = &domain.User{ID: 3, Role: domain.RoleMentee, Email: "mentee@example.com"}
)

// 2025-03-03 is a Monday
func mondaySlot(startHour, startMin, endHour, endMin int) (time.Time, time.Time) {
	return time.Date(2025, 3, 3, startHour, startMin, 0, 0, time.UTC),
		time.Date(2025, 3, 3, endHour, endMin, 0, 0, time.UTC)
}

func mondayWindow() []domain.AvailabilityWindow {
	return []domain.AvailabilityWindow{
		{MentorID: 7, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}
}

func TestService_RequestBooking_Success(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 0, 9, 30)

	f.users.On("GetByID", mock.Anything, int64(7)).Return(mentorUser, nil)
	f.users.On("GetByID", mock.Anything, int64(3)).Return(menteeUser, nil)
	f.windows.On("ListActiveForDay", mock.Anything, int64(7), 1).Return(mondayWindow(), nil)
	f.appts.On("CreateIfFree", mock.Anything, mock.Anything).Return(nil)

	a, err := f.svc.RequestBooking(context.Background(), 3, CreateAppointmentRequest{
		MentorID: 7, StartAt: start, EndAt: end,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentPending, a.Status)
	assert.Equal(t, int64(999), a.ID)
	f.appts.AssertExpectations(t)
}

func TestService_RequestBooking_RejectsMisaligned(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 5, 9, 35)

	_, err := f.svc.RequestBooking(context.Background(), 3, CreateAppointmentRequest{
		MentorID: 7, StartAt: start, EndAt: end,
	})

	assert.ErrorIs(t, err, ErrValidation)
	f.appts.AssertNotCalled(t, "CreateIfFree", mock.Anything, mock.Anything)
}

func TestService_RequestBooking_RejectsPastStart(t *testing.T) {
	f := newFixture()
	f.svc.now = func() time.Time { return time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) }
	start, end := mondaySlot(9, 0, 9, 30)

	_, err := f.svc.RequestBooking(context.Background(), 3, CreateAppointmentRequest{
		MentorID: 7, StartAt: start, EndAt: end,
	})

	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_RequestBooking_OutsideAvailability(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(13, 0, 13, 30)

	f.users.On("GetByID", mock.Anything, int64(7)).Return(mentorUser, nil)
	f.windows.On("ListActiveForDay", mock.Anything, int64(7), 1).Return(mondayWindow(), nil)

	_, err := f.svc.RequestBooking(context.Background(), 3, CreateAppointmentRequest{
		MentorID: 7, StartAt: start, EndAt: end,
	})

	assert.ErrorIs(t, err, ErrOutsideAvailability)
	f.appts.AssertNotCalled(t, "CreateIfFree", mock.Anything, mock.Anything)
}

func TestService_RequestBooking_MustFitSingleWindow(t *testing.T) {
	f := newFixture()
	// two adjacent windows, request spans the seam
	f.users.On("GetByID", mock.Anything, int64(7)).Return(mentorUser, nil)
	f.windows.On("ListActiveForDay", mock.Anything, int64(7), 1).Return([]domain.AvailabilityWindow{
		{MentorID: 7, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true},
		{MentorID: 7, DayOfWeek: 1, StartTime: "12:00", EndTime: "14:00", IsActive: true},
	}, nil)

	start, end := mondaySlot(11, 30, 12, 30)
	_, err := f.svc.RequestBooking(context.Background(), 3, CreateAppointmentRequest{
		MentorID: 7, StartAt: start, EndAt: end,
	})

	assert.ErrorIs(t, err, ErrOutsideAvailability)
}

func TestService_RequestBooking_Conflict(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 15, 9, 45)

	f.users.On("GetByID", mock.Anything, int64(7)).Return(mentorUser, nil)
	f.windows.On("ListActiveForDay", mock.Anything, int64(7), 1).Return(mondayWindow(), nil)
	f.appts.On("CreateIfFree", mock.Anything, mock.Anything).Return(repository.ErrConflict)

	_, err := f.svc.RequestBooking(context.Background(), 3, CreateAppointmentRequest{
		MentorID: 7, StartAt: start, EndAt: end,
	})

	assert.ErrorIs(t, err, ErrConflict)
}

// slowAppointmentStore keeps appointments in memory and yields between the
// overlap check and the insert, so the check-then-insert pair is only atomic
// when callers are serialized per mentor.
type slowAppointmentStore struct {
	mu    sync.Mutex
	appts []domain.Appointment
}

func (s *slowAppointmentStore) CreateIfFree(ctx context.Context, a *domain.Appointment) error {
	s.mu.Lock()
	for i := range s.appts {
		b := &s.appts[i]
		if b.MentorID == a.MentorID && b.Status != domain.AppointmentCancelled &&
			b.StartAt.Before(a.EndAt) && b.EndAt.After(a.StartAt) {
			s.mu.Unlock()
			return repository.ErrConflict
		}
	}
	s.mu.Unlock()

	time.Sleep(time.Millisecond)

	s.mu.Lock()
	a.ID = int64(len(s.appts) + 1)
	s.appts = append(s.appts, *a)
	s.mu.Unlock()
	return nil
}

func (s *slowAppointmentStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appts)
}

func (s *slowAppointmentStore) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *slowAppointmentStore) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus) error {
	return nil
}

func (s *slowAppointmentStore) SetMeetingLinks(ctx context.Context, id int64, meetingLink, calendarLink string) error {
	return nil
}

func (s *slowAppointmentStore) ListByMentor(ctx context.Context, mentorID int64) ([]domain.Appointment, error) {
	return nil, nil
}

func (s *slowAppointmentStore) ListByMentee(ctx context.Context, menteeID int64) ([]domain.Appointment, error) {
	return nil, nil
}

func TestService_RequestBooking_ConcurrentRequestsBookOnce(t *testing.T) {
	windows := new(MockAvailabilityReader)
	users := new(MockUserReader)
	store := &slowAppointmentStore{}
	svc := NewService(store, windows, users, new(MockMeetingProvider), nil, nil, time.Second)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }

	users.On("GetByID", mock.Anything, int64(7)).Return(mentorUser, nil)
	windows.On("ListActiveForDay", mock.Anything, int64(7), 1).Return(mondayWindow(), nil)

	start, end := mondaySlot(9, 0, 9, 30)

	const n = 8
	errs := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.RequestBooking(context.Background(), 3, CreateAppointmentRequest{
				MentorID: 7, StartAt: start, EndAt: end,
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var booked, conflicts int
	for err := range errs {
		switch {
		case err == nil:
			booked++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// exactly one request wins the interval, the rest see the conflict
	assert.Equal(t, 1, booked)
	assert.Equal(t, n-1, conflicts)
	assert.Equal(t, 1, store.count())
}

func TestService_AcceptBooking_Success(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 0, 9, 30)
	pending := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentPending}
	confirmed := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentConfirmed, MeetingLink: "https://meet/x"}

	f.appts.On("GetByID", mock.Anything, int64(42)).Return(pending, nil).Once()
	f.users.On("GetByID", mock.Anything, int64(7)).Return(mentorUser, nil)
	f.users.On("GetByID", mock.Anything, int64(3)).Return(menteeUser, nil)
	f.meetings.On("CreateMeeting", mock.Anything, start, end, "mentor@example.com", "mentee@example.com").
		Return(&meeting.Links{MeetingLink: "https://meet/x", CalendarLink: "https://cal/x"}, nil)
	f.appts.On("SetMeetingLinks", mock.Anything, int64(42), "https://meet/x", "https://cal/x").Return(nil)
	f.appts.On("UpdateStatus", mock.Anything, int64(42), domain.AppointmentConfirmed).Return(nil)
	f.appts.On("GetByID", mock.Anything, int64(42)).Return(confirmed, nil)

	a, err := f.svc.AcceptBooking(context.Background(), 7, 42)

	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentConfirmed, a.Status)
	assert.Equal(t, "https://meet/x", a.MeetingLink)
	f.appts.AssertExpectations(t)
}

func TestService_AcceptBooking_MeetingFailureLeavesPending(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 0, 9, 30)
	pending := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentPending}

	f.appts.On("GetByID", mock.Anything, int64(42)).Return(pending, nil)
	f.users.On("GetByID", mock.Anything, int64(7)).Return(mentorUser, nil)
	f.users.On("GetByID", mock.Anything, int64(3)).Return(menteeUser, nil)
	f.meetings.On("CreateMeeting", mock.Anything, start, end, mock.Anything, mock.Anything).
		Return(nil, errors.New("provider down"))

	_, err := f.svc.AcceptBooking(context.Background(), 7, 42)

	assert.ErrorIs(t, err, ErrMeetingProvider)
	f.appts.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	f.appts.AssertNotCalled(t, "SetMeetingLinks", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AcceptBooking_Guards(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 0, 9, 30)
	confirmed := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentConfirmed}

	f.appts.On("GetByID", mock.Anything, int64(42)).Return(confirmed, nil)

	_, err := f.svc.AcceptBooking(context.Background(), 5, 42)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.AcceptBooking(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_CancelBooking_ByEitherParticipant(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 0, 9, 30)

	for _, actor := range []int64{7, 3} {
		appts := new(MockAppointmentRepository)
		f.svc.appointments = appts

		pending := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentPending}
		cancelled := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentCancelled}

		appts.On("GetByID", mock.Anything, int64(42)).Return(pending, nil).Once()
		appts.On("UpdateStatus", mock.Anything, int64(42), domain.AppointmentCancelled).Return(nil)
		appts.On("GetByID", mock.Anything, int64(42)).Return(cancelled, nil)

		a, err := f.svc.CancelBooking(context.Background(), actor, 42)
		require.NoError(t, err)
		assert.Equal(t, domain.AppointmentCancelled, a.Status)
	}
}

func TestService_CancelBooking_Guards(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 0, 9, 30)
	completed := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentCompleted}

	f.appts.On("GetByID", mock.Anything, int64(42)).Return(completed, nil)

	_, err := f.svc.CancelBooking(context.Background(), 99, 42)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.CancelBooking(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestService_CompleteBooking(t *testing.T) {
	f := newFixture()
	start, end := mondaySlot(9, 0, 9, 30)
	confirmed := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentConfirmed}
	completed := &domain.Appointment{ID: 42, MentorID: 7, MenteeID: 3, StartAt: start, EndAt: end, Status: domain.AppointmentCompleted}

	// before the session ends
	f.appts.On("GetByID", mock.Anything, int64(42)).Return(confirmed, nil).Once()
	_, err := f.svc.CompleteBooking(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrTooEarly)

	// after the end
	f.svc.now = func() time.Time { return end.Add(time.Hour) }
	f.appts.On("GetByID", mock.Anything, int64(42)).Return(confirmed, nil).Once()
	f.appts.On("UpdateStatus", mock.Anything, int64(42), domain.AppointmentCompleted).Return(nil)
	f.appts.On("GetByID", mock.Anything, int64(42)).Return(completed, nil).Once()

	a, err := f.svc.CompleteBooking(context.Background(), 7, 42)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentCompleted, a.Status)

	// repeated complete
	f.appts.On("GetByID", mock.Anything, int64(42)).Return(completed, nil)
	_, err = f.svc.CompleteBooking(context.Background(), 7, 42)
	assert.ErrorIs(t, err, ErrAlreadyCompleted)

	// mentee cannot complete
	_, err = f.svc.CompleteBooking(context.Background(), 3, 42)
	assert.ErrorIs(t, err, ErrForbidden)
}
