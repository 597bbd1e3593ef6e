package database

import "errors"

var (
	// ErrServiceNotFound covers missing, inactive and non-bookable
	// services on the booking path.
	ErrServiceNotFound = errors.New("service not found or not bookable")

	// ErrSlotUnavailable means the requested time is off the grid or
	// conflicts with an existing booking. Retryable with another slot.
	ErrSlotUnavailable = errors.New("requested slot is not available")

	ErrBookingNotFound = errors.New("booking not found")

	// ErrInvalidTransition is returned when a status change violates the
	// booking lifecycle guard table.
	ErrInvalidTransition = errors.New("invalid booking status transition")

	ErrInvalidPriority = errors.New("invalid booking priority")

	ErrPastDate   = errors.New("booking date is in the past")
	ErrDateTooFar = errors.New("booking date is too far in the future")

	ErrDuplicateSubscriber = errors.New("email is already subscribed")
)
