package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts "HH:MM" to minutes since midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}

	return hour*60 + minute, nil
}

// FormatClock converts minutes since midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Grid holds the candidate slot start times for a working day, in
// minutes since midnight, ascending.
type Grid struct {
	starts []int
	step   int
}

// NewGrid builds the business-hours grid. Slots start at open and
// repeat every step minutes while the start stays strictly before
// close; the last slot may run past close, matching how a day's final
// appointment is sold.
func NewGrid(open, close string, stepMinutes int) (*Grid, error) {
	openMin, err := ParseClock(open)
	if err != nil {
		return nil, fmt.Errorf("schedule open: %w", err)
	}
	closeMin, err := ParseClock(close)
	if err != nil {
		return nil, fmt.Errorf("schedule close: %w", err)
	}
	if closeMin <= openMin {
		return nil, fmt.Errorf("schedule close %s must be after open %s", close, open)
	}
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("slot step must be positive, got %d", stepMinutes)
	}

	var starts []int
	for t := openMin; t < closeMin; t += stepMinutes {
		starts = append(starts, t)
	}

	return &Grid{starts: starts, step: stepMinutes}, nil
}

// Starts returns the slot start times in minutes since midnight.
func (g *Grid) Starts() []int {
	out := make([]int, len(g.starts))
	copy(out, g.starts)
	return out
}

// Len returns the number of candidate slots.
func (g *Grid) Len() int { return len(g.starts) }

// Step returns the slot interval in minutes.
func (g *Grid) Step() int { return g.step }

// Contains reports whether t (minutes since midnight) is a slot start.
func (g *Grid) Contains(t int) bool {
	for _, s := range g.starts {
		if s == t {
			return true
		}
	}
	return false
}
