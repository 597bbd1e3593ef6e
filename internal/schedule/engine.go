// Package schedule computes appointment slot availability over the
// facility's business-hours grid. It is pure logic: callers resolve the
// service and fetch the day's bookings, the engine only does interval
// math at minute resolution.
package schedule

import (
	"lockwise/internal/models"
)

// Interval is a half-open time window [Start, End) in minutes since
// midnight.
type Interval struct {
	Start int
	End   int
}

// Overlaps reports whether two half-open intervals share any minute.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start < other.End && i.End > other.Start
}

// Engine evaluates slot availability for one facility.
type Engine struct {
	grid *Grid
}

func NewEngine(grid *Grid) *Engine {
	return &Engine{grid: grid}
}

// BusyIntervals converts the day's bookings into occupied windows.
// Each booking blocks [start, start+its own stored duration); bookings
// with an unparseable time are skipped rather than blocking the day.
func BusyIntervals(bookings []*models.Booking) []Interval {
	busy := make([]Interval, 0, len(bookings))
	for _, b := range bookings {
		start, err := ParseClock(b.Time)
		if err != nil {
			continue
		}
		busy = append(busy, Interval{Start: start, End: start + b.Duration})
	}
	return busy
}

// Slots returns one entry per grid slot, in ascending time order. A
// slot is available when the window [slotStart, slotStart+duration)
// overlaps none of the busy intervals. The grid size never depends on
// the service duration.
func (e *Engine) Slots(durationMinutes int, bookings []*models.Booking) []models.SlotAvailability {
	busy := BusyIntervals(bookings)

	out := make([]models.SlotAvailability, 0, e.grid.Len())
	for _, start := range e.grid.Starts() {
		candidate := Interval{Start: start, End: start + durationMinutes}

		available := true
		for _, b := range busy {
			if candidate.Overlaps(b) {
				available = false
				break
			}
		}

		out = append(out, models.SlotAvailability{
			Time:      FormatClock(start),
			Available: available,
		})
	}
	return out
}

// SlotFree reports whether the slot starting at the given "HH:MM" is on
// the grid and free for a service of the given duration.
func (e *Engine) SlotFree(clock string, durationMinutes int, bookings []*models.Booking) bool {
	start, err := ParseClock(clock)
	if err != nil || !e.grid.Contains(start) {
		return false
	}

	candidate := Interval{Start: start, End: start + durationMinutes}
	for _, b := range BusyIntervals(bookings) {
		if candidate.Overlaps(b) {
			return false
		}
	}
	return true
}
