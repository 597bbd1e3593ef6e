package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		allowed  bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusNoShow, true},
		{StatusPending, StatusInProgress, false},
		{StatusPending, StatusCompleted, false},

		{StatusConfirmed, StatusInProgress, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},
		{StatusConfirmed, StatusCompleted, false},
		{StatusConfirmed, StatusPending, false},

		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusCancelled, false},
		{StatusInProgress, StatusNoShow, false},

		// Terminal statuses have no way out.
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusNoShow, StatusPending, false},

		{"archived", StatusConfirmed, false},
		{StatusPending, StatusPending, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("archived"))
	assert.False(t, ValidStatus(""))
	assert.False(t, ValidStatus("Pending"))
}

func TestValidPriority(t *testing.T) {
	for _, p := range []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityEmergency} {
		assert.True(t, ValidPriority(p), p)
	}
	assert.False(t, ValidPriority("urgent"))
	assert.False(t, ValidPriority(""))
}

func TestValidCategory(t *testing.T) {
	for _, c := range []string{CategoryInstallation, CategoryRepair, CategoryMaintenance, CategoryEmergency} {
		assert.True(t, ValidCategory(c), c)
	}
	assert.False(t, ValidCategory("consulting"))
	assert.False(t, ValidCategory(""))
}

func TestServiceBookable(t *testing.T) {
	assert.True(t, (&Service{IsActive: true, IsBookable: true}).Bookable())
	assert.False(t, (&Service{IsActive: true, IsBookable: false}).Bookable())
	assert.False(t, (&Service{IsActive: false, IsBookable: true}).Bookable())
	assert.False(t, (&Service{}).Bookable())
}
