package availability

import (
	"context"
	"testing"
	"time"

	"mentorhub/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Mock repositories
type MockAvailabilityRepository struct {
	mock.Mock
}

func (m *MockAvailabilityRepository) ReplaceForMentor(ctx context.Context, mentorID int64, windows []domain.AvailabilityWindow) error {
	args := m.Called(ctx, mentorID, windows)
	return args.Error(0)
}

func (m *MockAvailabilityRepository) ListByMentor(ctx context.Context, mentorID int64) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, mentorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

func (m *MockAvailabilityRepository) ListActiveForDay(ctx context.Context, mentorID int64, dayOfWeek int) ([]domain.AvailabilityWindow, error) {
	args := m.Called(ctx, mentorID, dayOfWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AvailabilityWindow), args.Error(1)
}

type MockAppointmentReader struct {
	mock.Mock
}

func (m *MockAppointmentReader) ListOverlapping(ctx context.Context, mentorID int64, from, to time.Time) ([]domain.Appointment, error) {
	args := m.Called(ctx, mentorID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Appointment), args.Error(1)
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

func newTestService(windows *MockAvailabilityRepository, appts *MockAppointmentReader, users *MockUserReader) *Service {
	return NewService(windows, appts, users, nil)
}

func windowInput(day int, start, end string) WindowInput {
	return WindowInput{DayOfWeek: day, StartTime: start, EndTime: end}
}

func TestService_SetWeeklyAvailability_Valid(t *testing.T) {
	windows := new(MockAvailabilityRepository)
	svc := newTestService(windows, new(MockAppointmentReader), new(MockUserReader))

	windows.On("ReplaceForMentor", mock.Anything, int64(7), mock.Anything).Return(nil)
	windows.On("ListByMentor", mock.Anything, int64(7)).Return([]domain.AvailabilityWindow{
		{ID: 1, MentorID: 7, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}, nil)

	out, err := svc.SetWeeklyAvailability(context.Background(), 7, SetAvailabilityRequest{
		Windows: []WindowInput{windowInput(1, "09:00", "12:00")},
	})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "09:00", out[0].StartTime)
	windows.AssertExpectations(t)
}

func TestService_SetWeeklyAvailability_RejectsMisaligned(t *testing.T) {
	windows := new(MockAvailabilityRepository)
	svc := newTestService(windows, new(MockAppointmentReader), new(MockUserReader))

	_, err := svc.SetWeeklyAvailability(context.Background(), 7, SetAvailabilityRequest{
		Windows: []WindowInput{windowInput(1, "09:10", "12:00")},
	})

	assert.ErrorIs(t, err, ErrValidation)
	windows.AssertNotCalled(t, "ReplaceForMentor", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SetWeeklyAvailability_RejectsStartAfterEnd(t *testing.T) {
	svc := newTestService(new(MockAvailabilityRepository), new(MockAppointmentReader), new(MockUserReader))

	_, err := svc.SetWeeklyAvailability(context.Background(), 7, SetAvailabilityRequest{
		Windows: []WindowInput{windowInput(1, "12:00", "09:00")},
	})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SetWeeklyAvailability(context.Background(), 7, SetAvailabilityRequest{
		Windows: []WindowInput{windowInput(1, "09:00", "09:00")},
	})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestService_SetWeeklyAvailability_RejectsOverlapSameDay(t *testing.T) {
	windows := new(MockAvailabilityRepository)
	svc := newTestService(windows, new(MockAppointmentReader), new(MockUserReader))

	// 10:00-13:00 starts inside 09:00-12:00
	_, err := svc.SetWeeklyAvailability(context.Background(), 7, SetAvailabilityRequest{
		Windows: []WindowInput{
			windowInput(2, "09:00", "12:00"),
			windowInput(2, "10:00", "13:00"),
		},
	})

	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "tuesday")
	windows.AssertNotCalled(t, "ReplaceForMentor", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_SetWeeklyAvailability_AllowsAdjacentWindows(t *testing.T) {
	windows := new(MockAvailabilityRepository)
	svc := newTestService(windows, new(MockAppointmentReader), new(MockUserReader))

	windows.On("ReplaceForMentor", mock.Anything, int64(7), mock.Anything).Return(nil)
	windows.On("ListByMentor", mock.Anything, int64(7)).Return([]domain.AvailabilityWindow{}, nil)

	// touching boundaries are fine, and same times on another day are fine
	_, err := svc.SetWeeklyAvailability(context.Background(), 7, SetAvailabilityRequest{
		Windows: []WindowInput{
			windowInput(1, "09:00", "12:00"),
			windowInput(1, "12:00", "14:00"),
			windowInput(2, "09:00", "12:00"),
		},
	})

	require.NoError(t, err)
	windows.AssertExpectations(t)
}

func TestService_GetDaySlots_InclusiveFinalBoundary(t *testing.T) {
	windows := new(MockAvailabilityRepository)
	appts := new(MockAppointmentReader)
	users := new(MockUserReader)
	svc := newTestService(windows, appts, users)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }

	// 2025-03-03 is a Monday
	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleMentor}, nil)
	windows.On("ListActiveForDay", mock.Anything, int64(7), 1).Return([]domain.AvailabilityWindow{
		{MentorID: 7, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}, nil)
	appts.On("ListOverlapping", mock.Anything, int64(7), mock.Anything, mock.Anything).
		Return([]domain.Appointment{}, nil)

	out, err := svc.GetDaySlots(context.Background(), 7, "2025-03-03")

	require.NoError(t, err)
	// 09:00 through 12:00 inclusive in 15-minute steps
	require.Len(t, out.Slots, 13)
	assert.Equal(t, time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), out.Slots[0].StartAt)
	assert.Equal(t, time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC), out.Slots[12].StartAt)
	for _, s := range out.Slots {
		assert.False(t, s.IsBooked)
		assert.False(t, s.IsPast)
	}
}

func TestService_GetDaySlots_BookedBoundaryRule(t *testing.T) {
	windows := new(MockAvailabilityRepository)
	appts := new(MockAppointmentReader)
	users := new(MockUserReader)
	svc := newTestService(windows, appts, users)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }

	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleMentor}, nil)
	windows.On("ListActiveForDay", mock.Anything, int64(7), 1).Return([]domain.AvailabilityWindow{
		{MentorID: 7, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}, nil)
	appts.On("ListOverlapping", mock.Anything, int64(7), mock.Anything, mock.Anything).
		Return([]domain.Appointment{{
			MentorID: 7,
			StartAt:  time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC),
			EndAt:    time.Date(2025, 3, 3, 10, 30, 0, 0, time.UTC),
			Status:   domain.AppointmentConfirmed,
		}}, nil)

	out, err := svc.GetDaySlots(context.Background(), 7, "2025-03-03")
	require.NoError(t, err)

	byStart := make(map[string]Slot)
	for _, s := range out.Slots {
		byStart[s.StartAt.Format("15:04")] = s
	}

	assert.False(t, byStart["09:45"].IsBooked)
	assert.True(t, byStart["10:00"].IsBooked)
	assert.True(t, byStart["10:15"].IsBooked)
	// the slot starting exactly at the booking's end stays free
	assert.False(t, byStart["10:30"].IsBooked)
}

func TestService_GetDaySlots_PastOnlyOnCurrentDate(t *testing.T) {
	windows := new(MockAvailabilityRepository)
	appts := new(MockAppointmentReader)
	users := new(MockUserReader)
	svc := newTestService(windows, appts, users)
	svc.now = func() time.Time { return time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) }

	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7, Role: domain.RoleMentor}, nil)
	windows.On("ListActiveForDay", mock.Anything, int64(7), mock.Anything).Return([]domain.AvailabilityWindow{
		{MentorID: 7, DayOfWeek: 1, StartTime: "09:00", EndTime: "12:00", IsActive: true},
	}, nil)
	appts.On("ListOverlapping", mock.Anything, int64(7), mock.Anything, mock.Anything).
		Return([]domain.Appointment{}, nil)

	today, err := svc.GetDaySlots(context.Background(), 7, "2025-03-03")
	require.NoError(t, err)

	byStart := make(map[string]Slot)
	for _, s := range today.Slots {
		byStart[s.StartAt.Format("15:04")] = s
	}
	assert.True(t, byStart["09:45"].IsPast)
	assert.True(t, byStart["10:00"].IsPast) // an instant equal to now is past
	assert.False(t, byStart["10:15"].IsPast)

	// a future Monday never reports past slots, even for morning times
	nextWeek, err := svc.GetDaySlots(context.Background(), 7, "2025-03-10")
	require.NoError(t, err)
	for _, s := range nextWeek.Slots {
		assert.False(t, s.IsPast)
	}
}

func TestService_GetDaySlots_RejectsBadDate(t *testing.T) {
	svc := newTestService(new(MockAvailabilityRepository), new(MockAppointmentReader), new(MockUserReader))

	_, err := svc.GetDaySlots(context.Background(), 7, "03/03/2025")
	assert.ErrorIs(t, err, ErrValidation)
}
