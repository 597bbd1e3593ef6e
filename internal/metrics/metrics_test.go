package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterIsIdempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		Register()
		Register()
	})
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(bookingsCreated)
	IncBookingCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(bookingsCreated))

	before = testutil.ToFloat64(slotConflicts)
	IncSlotConflict()
	assert.Equal(t, before+1, testutil.ToFloat64(slotConflicts))

	before = testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/bookings"))
	IncHTTP("/api/v1/bookings")
	assert.Equal(t, before+1, testutil.ToFloat64(httpRequests.WithLabelValues("/api/v1/bookings")))
}
