package models

import (
	"fmt"
	"strings"
	"time"
)

// Granularity selects the bucket width.
type Granularity string

const (
	// GranularityDay buckets events per calendar day.
	GranularityDay Granularity = "day"
	// GranularityHour buckets events per clock hour.
	GranularityHour Granularity = "hour"
)

// ParseGranularity parses "day" or "hour" (case-insensitive).
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(strings.ToLower(strings.TrimSpace(s))) {
	case GranularityDay:
		return GranularityDay, nil
	case GranularityHour:
		return GranularityHour, nil
	default:
		return "", fmt.Errorf("invalid granularity: %q (must be day or hour)", s)
	}
}

// Valid reports whether g is a known granularity.
func (g Granularity) Valid() bool {
	return g == GranularityDay || g == GranularityHour
}

// DateRange is an inclusive pair of timestamps.
type DateRange struct {
	// Start is the lower bound (inclusive).
	Start time.Time `json:"start"`
	// End is the upper bound (inclusive).
	End time.Time `json:"end"`
}

// DayRange returns the range covering the whole calendar days from..to
// in the location of from.
func DayRange(from, to time.Time) DateRange {
	loc := from.Location()
	to = to.In(loc)
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
	return DateRange{Start: start, End: end}
}

// Contains reports whether t lies within the range, bounds included.
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Inverted reports whether End is before Start.
func (r DateRange) Inverted() bool {
	return r.End.Before(r.Start)
}

// Query carries the parameters of one analysis request.
type Query struct {
	// Range is the inclusive date range to analyze.
	Range DateRange `json:"range"`
	// Granularity is the bucket width.
	Granularity Granularity `json:"granularity"`
}
