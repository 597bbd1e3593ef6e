package service

import (
	"context"
	"io"
	"testing"
	"time"

	"lockwise/internal/database"
	"lockwise/internal/domain"
	"lockwise/internal/models"
	"lockwise/internal/schedule"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) CreateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockStore) GetServiceByID(ctx context.Context, id int64) (*models.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockStore) GetServiceByName(ctx context.Context, n string) (*models.Service, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Service), args.Error(1)
}
func (m *mockStore) ListServices(ctx context.Context, a bool) ([]*models.Service, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Service), args.Error(1)
}
func (m *mockStore) UpdateService(ctx context.Context, s *models.Service) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockStore) DeactivateService(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockStore) GetBookingsForServiceDate(ctx context.Context, id int64, d time.Time) ([]*models.Booking, error) {
	args := m.Called(ctx, id, d)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockStore) CreateBookingSlotLocked(ctx context.Context, b *models.Booking, free func([]*models.Booking) bool) error {
	return m.Called(ctx, b, free).Error(0)
}
func (m *mockStore) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) GetBookingByReference(ctx context.Context, r string) (*models.Booking, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) UpdateBookingStatus(ctx context.Context, id int64, s string) (*models.Booking, error) {
	args := m.Called(ctx, id, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}
func (m *mockStore) GetBookingsByDateRange(ctx context.Context, s, e time.Time, t string) ([]*models.Booking, error) {
	args := m.Called(ctx, s, e, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Booking), args.Error(1)
}
func (m *mockStore) GetDailyBookings(ctx context.Context, s, e time.Time) (map[string][]*models.Booking, error) {
	args := m.Called(ctx, s, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string][]*models.Booking), args.Error(1)
}
func (m *mockStore) AssignTechnician(ctx context.Context, id int64, t string) error {
	return m.Called(ctx, id, t).Error(0)
}
func (m *mockStore) UpdateBookingCosts(ctx context.Context, id int64, est, act *float64) error {
	return m.Called(ctx, id, est, act).Error(0)
}
func (m *mockStore) UpdateBookingNotes(ctx context.Context, id int64, notes string) error {
	return m.Called(ctx, id, notes).Error(0)
}
func (m *mockStore) GetBookingStats(ctx context.Context, f, t *time.Time) (*models.BookingStats, error) {
	args := m.Called(ctx, f, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BookingStats), args.Error(1)
}
func (m *mockStore) CreateContact(ctx context.Context, c *models.Contact) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockStore) ListContacts(ctx context.Context, u bool) ([]*models.Contact, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Contact), args.Error(1)
}
func (m *mockStore) MarkContactHandled(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockStore) Subscribe(ctx context.Context, e string) (*models.Subscriber, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscriber), args.Error(1)
}
func (m *mockStore) Unsubscribe(ctx context.Context, e string) error {
	return m.Called(ctx, e).Error(0)
}
func (m *mockStore) ListSubscribers(ctx context.Context) ([]*models.Subscriber, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Subscriber), args.Error(1)
}
func (m *mockStore) UpsertUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockStore) GetUserByEmail(ctx context.Context, e string) (*models.User, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockStore) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}
func (m *mockStore) TouchUserLastSeen(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(et string, p interface{}) error { return m.Called(et, p).Error(0) }

type mockWorker struct {
	mock.Mock
}

func (m *mockWorker) EnqueueTask(ctx context.Context, tt string, bid int64, b *models.Booking, s string) error {
	return m.Called(ctx, tt, bid, b, s).Error(0)
}

func testEngine(t *testing.T) *schedule.Engine {
	t.Helper()
	grid, err := schedule.NewGrid("09:00", "17:00", 60)
	require.NoError(t, err)
	return schedule.NewEngine(grid)
}

func lockInstallation() *models.Service {
	return &models.Service{
		ID:                1,
		Name:              "Lock Installation",
		Category:          models.CategoryInstallation,
		BasePrice:         120,
		EstimatedDuration: 120,
		IsActive:          true,
		IsBookable:        true,
	}
}

func TestBookingService(t *testing.T) {
	logger := zerolog.New(io.Discard)
	ctx := context.Background()

	newSvc := func(store *mockStore, bus *mockEventBus, worker *mockWorker) *BookingService {
		var eventBus domain.EventPublisher
		if bus != nil {
			eventBus = bus
		}
		var syncWorker domain.SyncWorker
		if worker != nil {
			syncWorker = worker
		}
		return NewBookingService(store, testEngine(t), nil, eventBus, syncWorker, 90, &logger)
	}

	t.Run("ValidateBookingDate", func(t *testing.T) {
		svc := newSvc(new(mockStore), nil, nil)
		y, m, d := time.Now().Date()
		today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

		assert.ErrorIs(t, svc.ValidateBookingDate(today.AddDate(0, 0, -1)), database.ErrPastDate)
		assert.ErrorIs(t, svc.ValidateBookingDate(today.AddDate(0, 0, 91)), database.ErrDateTooFar)
		assert.NoError(t, svc.ValidateBookingDate(today.AddDate(0, 0, 5)))
		assert.NoError(t, svc.ValidateBookingDate(today), "same-day booking is allowed")
	})

	t.Run("ValidateBookingDateWindow", func(t *testing.T) {
		day := func(s string) time.Time {
			d, err := time.Parse("2006-01-02", s)
			require.NoError(t, err)
			return d
		}
		now := time.Date(2026, 9, 10, 15, 0, 0, 0, time.UTC)

		assert.ErrorIs(t, validateBookingDate(day("2026-09-09"), now, 90), database.ErrPastDate)
		assert.NoError(t, validateBookingDate(day("2026-09-10"), now, 90), "same-day booking is allowed")
		assert.NoError(t, validateBookingDate(day("2026-12-09"), now, 90), "day 90 is the last bookable day")
		assert.ErrorIs(t, validateBookingDate(day("2026-12-10"), now, 90), database.ErrDateTooFar)
	})

	t.Run("ValidateBookingDateLocalCalendar", func(t *testing.T) {
		// 00:30 on Sep 10 in a UTC+13 zone is already Sep 10 locally while
		// the UTC clock still reads Sep 9; yesterday's local date must be
		// rejected as past.
		east := time.FixedZone("UTC+13", 13*3600)
		now := time.Date(2026, 9, 10, 0, 30, 0, 0, east)

		assert.NoError(t, validateBookingDate(time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC), now, 90))
		assert.ErrorIs(t, validateBookingDate(time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), now, 90), database.ErrPastDate)

		// 20:00 on Sep 9 in UTC-8 is still Sep 9 locally though UTC has
		// rolled over to Sep 10; a same-day booking stays valid.
		west := time.FixedZone("UTC-8", -8*3600)
		now = time.Date(2026, 9, 9, 20, 0, 0, 0, west)
		assert.NoError(t, validateBookingDate(time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC), now, 90))
	})

	t.Run("GetAvailableSlots", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)
		date := time.Now().AddDate(0, 0, 3)

		existing := []*models.Booking{
			{Time: "09:00", Duration: 120, Status: models.StatusConfirmed},
		}
		store.On("GetServiceByID", ctx, int64(1)).Return(lockInstallation(), nil).Once()
		store.On("GetBookingsForServiceDate", ctx, int64(1), date).Return(existing, nil).Once()

		slots, err := svc.GetAvailableSlots(ctx, 1, date)
		require.NoError(t, err)
		require.Len(t, slots, 8)

		byTime := map[string]bool{}
		for _, s := range slots {
			byTime[s.Time] = s.Available
		}
		// The 2h booking occupies 09:00-11:00. A 2h candidate at 10:00
		// would still overlap it; 11:00 starts exactly when it ends.
		assert.False(t, byTime["09:00"])
		assert.False(t, byTime["10:00"])
		assert.True(t, byTime["11:00"])
		assert.True(t, byTime["16:00"])
		store.AssertExpectations(t)
	})

	t.Run("GetAvailableSlotsInactiveService", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		retired := lockInstallation()
		retired.IsActive = false
		retired.IsBookable = false
		store.On("GetServiceByID", ctx, int64(1)).Return(retired, nil).Once()

		_, err := svc.GetAvailableSlots(ctx, 1, time.Now().AddDate(0, 0, 3))
		assert.ErrorIs(t, err, database.ErrServiceNotFound)
		store.AssertNotCalled(t, "GetBookingsForServiceDate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("CreateBooking", func(t *testing.T) {
		store := new(mockStore)
		bus := new(mockEventBus)
		worker := new(mockWorker)
		svc := newSvc(store, bus, worker)

		booking := &models.Booking{
			ServiceID:    1,
			Date:         time.Now().AddDate(0, 0, 5),
			Time:         "12:00",
			CustomerName: "Dana Webb",
			CustomerPhone: "+1-555-0123",
		}

		store.On("GetServiceByID", ctx, int64(1)).Return(lockInstallation(), nil).Once()
		store.On("CreateBookingSlotLocked", ctx, booking, mock.AnythingOfType("func([]*models.Booking) bool")).Return(nil).Once()
		bus.On("PublishJSON", "booking_created", mock.Anything).Return(nil).Once()
		worker.On("EnqueueTask", ctx, "upsert", int64(0), booking, "").Return(nil).Once()

		err := svc.CreateBooking(ctx, booking)
		require.NoError(t, err)

		assert.Equal(t, models.StatusPending, booking.Status)
		assert.Equal(t, "Lock Installation", booking.ServiceName)
		assert.Equal(t, models.CategoryInstallation, booking.ServiceType)
		assert.Equal(t, 120, booking.Duration)
		assert.Equal(t, models.PriorityMedium, booking.Priority)
		require.NotNil(t, booking.EstimatedCost)
		assert.Equal(t, 120.0, *booking.EstimatedCost)
		assert.Len(t, booking.Reference, 8)
		store.AssertExpectations(t)
		bus.AssertExpectations(t)
		worker.AssertExpectations(t)
	})

	t.Run("CreateBookingSlotTaken", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		booking := &models.Booking{ServiceID: 1, Date: time.Now().AddDate(0, 0, 5), Time: "10:00"}

		store.On("GetServiceByID", ctx, int64(1)).Return(lockInstallation(), nil).Once()
		store.On("CreateBookingSlotLocked", ctx, booking, mock.Anything).Return(database.ErrSlotUnavailable).Once()

		err := svc.CreateBooking(ctx, booking)
		assert.ErrorIs(t, err, database.ErrSlotUnavailable)
		store.AssertExpectations(t)
	})

	t.Run("CreateBookingInactiveService", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		inactive := lockInstallation()
		inactive.IsBookable = false
		store.On("GetServiceByID", ctx, int64(1)).Return(inactive, nil).Once()

		err := svc.CreateBooking(ctx, &models.Booking{ServiceID: 1, Date: time.Now().AddDate(0, 0, 5), Time: "12:00"})
		assert.ErrorIs(t, err, database.ErrServiceNotFound)
		store.AssertExpectations(t)
	})

	t.Run("CreateBookingRejectsBadPriority", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		store.On("GetServiceByID", ctx, int64(1)).Return(lockInstallation(), nil).Once()

		booking := &models.Booking{ServiceID: 1, Date: time.Now().AddDate(0, 0, 5), Time: "12:00", Priority: "urgent-ish"}
		err := svc.CreateBooking(ctx, booking)
		assert.ErrorIs(t, err, database.ErrInvalidPriority)
	})

	t.Run("CreateBookingSlotFreeClosure", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		booking := &models.Booking{ServiceID: 1, Date: time.Now().AddDate(0, 0, 5), Time: "12:00"}

		var captured func([]*models.Booking) bool
		store.On("GetServiceByID", ctx, int64(1)).Return(lockInstallation(), nil).Once()
		store.On("CreateBookingSlotLocked", ctx, booking, mock.Anything).
			Run(func(args mock.Arguments) {
				captured = args.Get(2).(func([]*models.Booking) bool)
			}).
			Return(nil).Once()

		require.NoError(t, svc.CreateBooking(ctx, booking))
		require.NotNil(t, captured)

		assert.True(t, captured(nil), "empty day leaves the slot free")
		assert.True(t, captured([]*models.Booking{{Time: "09:00", Duration: 60}}))
		assert.False(t, captured([]*models.Booking{{Time: "13:00", Duration: 60}}),
			"a 2h job at 12:00 overlaps a booking at 13:00")
		assert.False(t, captured([]*models.Booking{{Time: "11:30", Duration: 60}}),
			"minute-offset bookings still conflict")
	})

	statusCases := []struct {
		name   string
		status string
		event  string
		call   func(*BookingService, int64) (*models.Booking, error)
	}{
		{"ConfirmBooking", models.StatusConfirmed, "booking_confirmed", func(s *BookingService, id int64) (*models.Booking, error) {
			return s.ConfirmBooking(ctx, id, "manager")
		}},
		{"StartBooking", models.StatusInProgress, "booking_started", func(s *BookingService, id int64) (*models.Booking, error) {
			return s.StartBooking(ctx, id, "technician")
		}},
		{"CompleteBooking", models.StatusCompleted, "booking_completed", func(s *BookingService, id int64) (*models.Booking, error) {
			return s.CompleteBooking(ctx, id, "technician")
		}},
		{"CancelBooking", models.StatusCancelled, "booking_cancelled", func(s *BookingService, id int64) (*models.Booking, error) {
			return s.CancelBooking(ctx, id, "customer")
		}},
		{"MarkNoShow", models.StatusNoShow, "booking_no_show", func(s *BookingService, id int64) (*models.Booking, error) {
			return s.MarkNoShow(ctx, id, "manager")
		}},
	}

	for _, tc := range statusCases {
		t.Run(tc.name, func(t *testing.T) {
			store := new(mockStore)
			bus := new(mockEventBus)
			worker := new(mockWorker)
			svc := newSvc(store, bus, worker)

			updated := &models.Booking{ID: 7, ServiceID: 1, Status: tc.status, Date: time.Now()}
			store.On("UpdateBookingStatus", ctx, int64(7), tc.status).Return(updated, nil).Once()
			bus.On("PublishJSON", tc.event, mock.Anything).Return(nil).Once()
			worker.On("EnqueueTask", ctx, "update_status", int64(7), updated, tc.status).Return(nil).Once()

			result, err := tc.call(svc, 7)
			require.NoError(t, err)
			assert.Equal(t, tc.status, result.Status)
			store.AssertExpectations(t)
			bus.AssertExpectations(t)
			worker.AssertExpectations(t)
		})
	}

	t.Run("UpdateStatusInvalidTransition", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		store.On("UpdateBookingStatus", ctx, int64(7), models.StatusCompleted).
			Return(nil, database.ErrInvalidTransition).Once()

		_, err := svc.CompleteBooking(ctx, 7, "manager")
		assert.ErrorIs(t, err, database.ErrInvalidTransition)
	})

	t.Run("GetBookingsByDateRange", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		start := time.Now()
		end := start.AddDate(0, 0, 7)
		bookings := []*models.Booking{{ID: 1}, {ID: 2}}

		store.On("GetBookingsByDateRange", ctx, start, end, "").Return(bookings, nil).Once()

		result, err := svc.GetBookingsByDateRange(ctx, start, end, "")
		require.NoError(t, err)
		assert.Equal(t, bookings, result)
	})

	t.Run("GetBookingStats", func(t *testing.T) {
		store := new(mockStore)
		svc := newSvc(store, nil, nil)

		stats := &models.BookingStats{Total: 4, Completed: 2, Revenue: 330}
		store.On("GetBookingStats", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(stats, nil).Once()

		result, err := svc.GetBookingStats(ctx, nil, nil)
		require.NoError(t, err)
		assert.Equal(t, stats, result)
	})

	t.Run("AssignTechnician", func(t *testing.T) {
		store := new(mockStore)
		worker := new(mockWorker)
		svc := newSvc(store, nil, worker)

		booking := &models.Booking{ID: 9, Technician: "R. Ortiz"}
		store.On("AssignTechnician", ctx, int64(9), "R. Ortiz").Return(nil).Once()
		store.On("GetBooking", ctx, int64(9)).Return(booking, nil).Once()
		worker.On("EnqueueTask", ctx, "upsert", int64(9), booking, "").Return(nil).Once()

		require.NoError(t, svc.AssignTechnician(ctx, 9, "R. Ortiz"))
		store.AssertExpectations(t)
	})
}
