// Package timegrid builds the ordered sequence of departure instants sampled
// across a time window on a given calendar date.
package timegrid

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for grid construction.
var (
	// ErrInvalidRange indicates the end time does not come after the start time.
	ErrInvalidRange = errors.New("end must be after start")
	// ErrInvalidInterval indicates a non-positive sampling interval.
	ErrInvalidInterval = errors.New("interval must be positive")
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// Build returns timezone-aware departure instants on date between start and
// end (both wall-clock HH:MM on that date in tz), spaced intervalMinutes
// apart. The sequence includes start and the last instant <= end.
func Build(date, start, end string, intervalMinutes int, tz string) ([]time.Time, error) {
	if intervalMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidInterval, intervalMinutes)
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
	}

	startAt, err := parseAt(date, start, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing start: %w", err)
	}
	endAt, err := parseAt(date, end, loc)
	if err != nil {
		return nil, fmt.Errorf("parsing end: %w", err)
	}

	if !endAt.After(startAt) {
		return nil, ErrInvalidRange
	}

	step := time.Duration(intervalMinutes) * time.Minute
	grid := make([]time.Time, 0, endAt.Sub(startAt)/step+1)
	for cursor := startAt; !cursor.After(endAt); cursor = cursor.Add(step) {
		grid = append(grid, cursor)
	}
	return grid, nil
}

// parseAt resolves "YYYY-MM-DD" + "HH:MM" in the given location.
func parseAt(date, hhmm string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+hhmm, loc)
}
