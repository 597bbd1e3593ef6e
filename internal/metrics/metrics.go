package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "lockwise",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lockwise",
			Name:      "bookings_created_total",
			Help:      "Successfully created bookings.",
		},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "lockwise",
			Name:      "slot_conflicts_total",
			Help:      "Booking attempts rejected because the slot was taken.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingsCreated, slotConflicts)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBookingCreated counts a successful booking insert.
func IncBookingCreated() {
	bookingsCreated.Inc()
}

// IncSlotConflict counts a rejected double-booking attempt.
func IncSlotConflict() {
	slotConflicts.Inc()
}
