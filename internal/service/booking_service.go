package service

import (
	"context"
	"strings"
	"time"

	"lockwise/internal/database"
	"lockwise/internal/domain"
	"lockwise/internal/events"
	"lockwise/internal/metrics"
	"lockwise/internal/models"
	"lockwise/internal/schedule"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type BookingService struct {
	store          domain.Store
	engine         *schedule.Engine
	cache          domain.AvailabilityCache
	eventBus       domain.EventPublisher
	sheetsWorker   domain.SyncWorker
	maxAdvanceDays int
	logger         *zerolog.Logger
}

func NewBookingService(
	store domain.Store,
	engine *schedule.Engine,
	cache domain.AvailabilityCache,
	eventBus domain.EventPublisher,
	sheetsWorker domain.SyncWorker,
	maxAdvanceDays int,
	logger *zerolog.Logger,
) *BookingService {
	if maxAdvanceDays <= 0 {
		maxAdvanceDays = models.DefaultMaxAdvanceDays
	}
	return &BookingService{
		store:          store,
		engine:         engine,
		cache:          cache,
		eventBus:       eventBus,
		sheetsWorker:   sheetsWorker,
		maxAdvanceDays: maxAdvanceDays,
		logger:         logger,
	}
}

// ValidateBookingDate rejects past dates and dates past the advance window.
func (s *BookingService) ValidateBookingDate(date time.Time) error {
	return validateBookingDate(date, time.Now(), s.maxAdvanceDays)
}

// Booking dates are parsed as UTC midnights but stand for facility-local
// calendar days, so "today" comes from the local calendar, not the UTC clock.
func validateBookingDate(date, now time.Time, maxAdvanceDays int) error {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if date.Before(today) {
		return database.ErrPastDate
	}
	if date.After(today.AddDate(0, 0, maxAdvanceDays)) {
		return database.ErrDateTooFar
	}
	return nil
}

// GetAvailableSlots computes the slot grid for a service on a date,
// serving from cache when a fresh grid exists.
func (s *BookingService) GetAvailableSlots(ctx context.Context, serviceID int64, date time.Time) ([]models.SlotAvailability, error) {
	svc, err := s.store.GetServiceByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.Bookable() {
		return nil, database.ErrServiceNotFound
	}

	if s.cache != nil {
		if cached, err := s.cache.GetSlots(ctx, serviceID, date); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.logger.Warn().Err(err).Int64("service_id", serviceID).Msg("availability cache read failed")
		}
	}

	bookings, err := s.store.GetBookingsForServiceDate(ctx, serviceID, date)
	if err != nil {
		return nil, err
	}

	slots := s.engine.Slots(svc.EstimatedDuration, bookings)

	if s.cache != nil {
		if err := s.cache.SetSlots(ctx, serviceID, date, slots); err != nil {
			s.logger.Warn().Err(err).Int64("service_id", serviceID).Msg("availability cache write failed")
		}
	}

	return slots, nil
}

// GetAvailableSlotsByName resolves a service by name first. Kept for
// clients that address services by display name.
func (s *BookingService) GetAvailableSlotsByName(ctx context.Context, serviceName string, date time.Time) ([]models.SlotAvailability, error) {
	svc, err := s.store.GetServiceByName(ctx, serviceName)
	if err != nil {
		return nil, err
	}
	return s.GetAvailableSlots(ctx, svc.ID, date)
}

// CreateBooking validates the request, snapshots service fields onto the
// booking, and inserts it inside a transaction that re-checks the slot.
func (s *BookingService) CreateBooking(ctx context.Context, booking *models.Booking) error {
	if err := s.ValidateBookingDate(booking.Date); err != nil {
		return err
	}

	svc, err := s.store.GetServiceByID(ctx, booking.ServiceID)
	if err != nil {
		return err
	}
	if !svc.Bookable() {
		return database.ErrServiceNotFound
	}

	booking.ServiceName = svc.Name
	booking.ServiceType = svc.Category
	if booking.Duration <= 0 {
		booking.Duration = svc.EstimatedDuration
	}
	if booking.EstimatedCost == nil && svc.BasePrice > 0 {
		price := svc.BasePrice
		booking.EstimatedCost = &price
	}
	if booking.Priority == "" {
		booking.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(booking.Priority) {
		return database.ErrInvalidPriority
	}
	if booking.Reference == "" {
		booking.Reference = strings.ToUpper(uuid.NewString()[:8])
	}
	booking.Status = models.StatusPending

	// The free check runs against rows read inside the insert transaction,
	// so two concurrent requests for the same slot cannot both pass it.
	err = s.store.CreateBookingSlotLocked(ctx, booking, func(existing []*models.Booking) bool {
		return s.engine.SlotFree(booking.Time, booking.Duration, existing)
	})
	if err != nil {
		if err == database.ErrSlotUnavailable {
			metrics.IncSlotConflict()
		}
		return err
	}

	metrics.IncBookingCreated()
	s.invalidateAvailability(ctx, booking.ServiceID, booking.Date)
	s.publishEvent(events.EventBookingCreated, booking, "customer")
	s.enqueueSync(ctx, booking, "upsert")

	if booking.UserID != nil {
		if err := s.store.TouchUserLastSeen(ctx, *booking.UserID); err != nil {
			s.logger.Warn().Err(err).Int64("user_id", *booking.UserID).Msg("touch user last seen failed")
		}
	}

	return nil
}

// UpdateStatus moves a booking through the lifecycle. Illegal transitions
// surface as ErrInvalidTransition from the store.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID int64, newStatus, changedBy string) (*models.Booking, error) {
	booking, err := s.store.UpdateBookingStatus(ctx, bookingID, newStatus)
	if err != nil {
		return nil, err
	}

	switch newStatus {
	case models.StatusConfirmed:
		s.publishEvent(events.EventBookingConfirmed, booking, changedBy)
	case models.StatusInProgress:
		s.publishEvent(events.EventBookingStarted, booking, changedBy)
	case models.StatusCompleted:
		s.publishEvent(events.EventBookingCompleted, booking, changedBy)
	case models.StatusCancelled:
		s.publishEvent(events.EventBookingCancelled, booking, changedBy)
	case models.StatusNoShow:
		s.publishEvent(events.EventBookingNoShow, booking, changedBy)
	}

	// Cancellations and no-shows free the slot.
	if newStatus == models.StatusCancelled || newStatus == models.StatusNoShow {
		s.invalidateAvailability(ctx, booking.ServiceID, booking.Date)
	}

	s.enqueueSync(ctx, booking, "update_status")
	return booking, nil
}

func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID int64, changedBy string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, models.StatusConfirmed, changedBy)
}

func (s *BookingService) StartBooking(ctx context.Context, bookingID int64, changedBy string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, models.StatusInProgress, changedBy)
}

func (s *BookingService) CompleteBooking(ctx context.Context, bookingID int64, changedBy string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, models.StatusCompleted, changedBy)
}

func (s *BookingService) CancelBooking(ctx context.Context, bookingID int64, changedBy string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, models.StatusCancelled, changedBy)
}

func (s *BookingService) MarkNoShow(ctx context.Context, bookingID int64, changedBy string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, bookingID, models.StatusNoShow, changedBy)
}

func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

func (s *BookingService) GetBookingByReference(ctx context.Context, reference string) (*models.Booking, error) {
	return s.store.GetBookingByReference(ctx, reference)
}

func (s *BookingService) GetBookingsByDateRange(ctx context.Context, start, end time.Time, technician string) ([]*models.Booking, error) {
	return s.store.GetBookingsByDateRange(ctx, start, end, technician)
}

func (s *BookingService) GetDailyBookings(ctx context.Context, start, end time.Time) (map[string][]*models.Booking, error) {
	return s.store.GetDailyBookings(ctx, start, end)
}

func (s *BookingService) GetBookingStats(ctx context.Context, from, to *time.Time) (*models.BookingStats, error) {
	return s.store.GetBookingStats(ctx, from, to)
}

func (s *BookingService) AssignTechnician(ctx context.Context, bookingID int64, technician string) error {
	if err := s.store.AssignTechnician(ctx, bookingID, technician); err != nil {
		return err
	}
	if booking, err := s.store.GetBooking(ctx, bookingID); err == nil {
		s.enqueueSync(ctx, booking, "upsert")
	}
	return nil
}

func (s *BookingService) UpdateBookingCosts(ctx context.Context, bookingID int64, estimated, actual *float64) error {
	if err := s.store.UpdateBookingCosts(ctx, bookingID, estimated, actual); err != nil {
		return err
	}
	if booking, err := s.store.GetBooking(ctx, bookingID); err == nil {
		s.enqueueSync(ctx, booking, "upsert")
	}
	return nil
}

func (s *BookingService) UpdateBookingNotes(ctx context.Context, bookingID int64, notes string) error {
	if err := s.store.UpdateBookingNotes(ctx, bookingID, notes); err != nil {
		return err
	}
	if booking, err := s.store.GetBooking(ctx, bookingID); err == nil {
		s.enqueueSync(ctx, booking, "upsert")
	}
	return nil
}

func (s *BookingService) invalidateAvailability(ctx context.Context, serviceID int64, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, serviceID, date); err != nil {
		s.logger.Warn().Err(err).Int64("service_id", serviceID).Msg("availability cache invalidate failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		ServiceID:   booking.ServiceID,
		ServiceName: booking.ServiceName,
		Status:      booking.Status,
		Date:        booking.Date,
		Time:        booking.Time,
		Customer:    booking.CustomerName,
		Technician:  booking.Technician,
		ChangedBy:   changedBy,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("booking_id", booking.ID).Msg("publish event error")
	}
}

func (s *BookingService) enqueueSync(ctx context.Context, booking *models.Booking, taskType string) {
	if s.sheetsWorker == nil {
		return
	}

	var status string
	if taskType == "update_status" {
		status = booking.Status
	}

	if err := s.sheetsWorker.EnqueueTask(ctx, taskType, booking.ID, booking, status); err != nil {
		s.logger.Error().Err(err).Int64("booking_id", booking.ID).Str("task", taskType).Msg("sheets enqueue error")
	}
}
