package domain

import (
	"context"
	"time"

	"lockwise/internal/models"
)

// Store is the persistence surface the services depend on.
type Store interface {
	// catalog
	CreateService(ctx context.Context, service *models.Service) error
	GetServiceByID(ctx context.Context, id int64) (*models.Service, error)
	GetServiceByName(ctx context.Context, name string) (*models.Service, error)
	ListServices(ctx context.Context, activeOnly bool) ([]*models.Service, error)
	UpdateService(ctx context.Context, service *models.Service) error
	DeactivateService(ctx context.Context, id int64) error

	// bookings
	GetBookingsForServiceDate(ctx context.Context, serviceID int64, date time.Time) ([]*models.Booking, error)
	CreateBookingSlotLocked(ctx context.Context, booking *models.Booking, free func(existing []*models.Booking) bool) error
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error)
	UpdateBookingStatus(ctx context.Context, id int64, newStatus string) (*models.Booking, error)
	GetBookingsByDateRange(ctx context.Context, start, end time.Time, technician string) ([]*models.Booking, error)
	GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error)
	AssignTechnician(ctx context.Context, id int64, technician string) error
	UpdateBookingCosts(ctx context.Context, id int64, estimated, actual *float64) error
	UpdateBookingNotes(ctx context.Context, id int64, notes string) error
	GetBookingStats(ctx context.Context, from, to *time.Time) (*models.BookingStats, error)

	// crm
	CreateContact(ctx context.Context, contact *models.Contact) error
	ListContacts(ctx context.Context, unhandledOnly bool) ([]*models.Contact, error)
	MarkContactHandled(ctx context.Context, id int64) error
	Subscribe(ctx context.Context, email string) (*models.Subscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	ListSubscribers(ctx context.Context) ([]*models.Subscriber, error)
	UpsertUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	TouchUserLastSeen(ctx context.Context, id int64) error
}

// AvailabilityCache holds computed day grids keyed by service and date.
type AvailabilityCache interface {
	GetSlots(ctx context.Context, serviceID int64, date time.Time) ([]models.SlotAvailability, error)
	SetSlots(ctx context.Context, serviceID int64, date time.Time, slots []models.SlotAvailability) error
	Invalidate(ctx context.Context, serviceID int64, date time.Time) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, bookingID int64, booking *models.Booking, status string) error
}
