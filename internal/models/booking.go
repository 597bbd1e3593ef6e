package models

import "time"

type Booking struct {
	ID            int64      `json:"id"`
	Reference     string     `json:"reference"`
	UserID        *int64     `json:"user_id,omitempty"`
	ServiceID     int64      `json:"service_id"`
	ServiceName   string     `json:"service_name"`
	ServiceType   string     `json:"service_type"`
	Date          time.Time  `json:"booking_date"`
	Time          string     `json:"booking_time"` // HH:MM, facility-local
	Duration      int        `json:"duration"`     // minutes, snapshot from the service
	Status        string     `json:"status"`
	Priority      string     `json:"priority"`
	CustomerName  string     `json:"customer_name"`
	CustomerPhone string     `json:"customer_phone"`
	CustomerEmail string     `json:"customer_email"`
	Address       string     `json:"service_address"`
	Technician    string     `json:"technician,omitempty"`
	EstimatedCost *float64   `json:"estimated_cost,omitempty"`
	ActualCost    *float64   `json:"actual_cost,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// SlotAvailability is one entry of the business-hours grid for a date.
type SlotAvailability struct {
	Time      string `json:"time"` // HH:MM
	Available bool   `json:"available"`
}

// BookingStats aggregates bookings over an optional date range.
type BookingStats struct {
	Total     int     `json:"total"`
	Pending   int     `json:"pending"`
	Confirmed int     `json:"confirmed"`
	Completed int     `json:"completed"`
	Cancelled int     `json:"cancelled"`
	Revenue   float64 `json:"revenue"`
}
