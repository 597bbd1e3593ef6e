package models

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusNoShow     = "no_show"
)

const (
	PriorityLow       = "low"
	PriorityMedium    = "medium"
	PriorityHigh      = "high"
	PriorityEmergency = "emergency"
)

const (
	CategoryInstallation = "installation"
	CategoryRepair       = "repair"
	CategoryMaintenance  = "maintenance"
	CategoryEmergency    = "emergency"
)

const (
	// DefaultOpenTime / DefaultCloseTime bound the booking grid when the
	// schedule config is empty.
	DefaultOpenTime  = "09:00"
	DefaultCloseTime = "17:00"

	// DefaultSlotMinutes is the grid step.
	DefaultSlotMinutes = 60

	// DefaultMaxAdvanceDays limits how far ahead a booking may be placed.
	DefaultMaxAdvanceDays = 90

	// WorkerQueueSize is the in-memory sync queue capacity.
	WorkerQueueSize = 1000

	// AvailabilityCacheTTL is how long a computed day grid stays cached.
	AvailabilityCacheTTL = 60 // seconds

	// RateLimitRequests / RateLimitWindow shape the per-client API limit.
	RateLimitRequests = 20
	RateLimitWindow   = 60 // seconds
)

// transitions is the booking lifecycle guard table. Terminal statuses
// have no outgoing edges.
var transitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow},
	StatusInProgress: {StatusCompleted},
}

// CanTransition reports whether a booking may move from one status to
// another.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidStatus reports whether s is a known booking status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known booking priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// ValidCategory reports whether c is a known service category.
func ValidCategory(c string) bool {
	switch c {
	case CategoryInstallation, CategoryRepair, CategoryMaintenance, CategoryEmergency:
		return true
	}
	return false
}
