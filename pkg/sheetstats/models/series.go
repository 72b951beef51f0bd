package models

import "time"

// Bucket is one time slot of a series with its event count.
type Bucket struct {
	// Key is the canonical label of the slot (e.g. "02.01.2024" or "02.01.2024 13:00").
	Key string `json:"key"`
	// Start is the first instant of the slot.
	Start time.Time `json:"start"`
	// Count is the number of events in the slot.
	Count int `json:"count"`
}

// Series is the bucketed result of analyzing one series.
type Series struct {
	// Name is the series identifier the caller asked for.
	Name string `json:"name"`
	// DisplayName is the human-readable name of the series.
	DisplayName string `json:"display_name"`
	// Granularity is the bucket width used.
	Granularity Granularity `json:"granularity,omitempty"`
	// Buckets are the slots in chronological order.
	Buckets []Bucket `json:"buckets"`
}

// Total returns the sum of all bucket counts.
func (s Series) Total() int {
	total := 0
	for _, b := range s.Buckets {
		total += b.Count
	}
	return total
}

// Max returns the largest bucket count, or 0 for an empty series.
func (s Series) Max() int {
	max := 0
	for _, b := range s.Buckets {
		if b.Count > max {
			max = b.Count
		}
	}
	return max
}

// Keys returns the bucket keys in order.
func (s Series) Keys() []string {
	keys := make([]string, len(s.Buckets))
	for i, b := range s.Buckets {
		keys[i] = b.Key
	}
	return keys
}

// Comparison is the overlay of several series on a shared set of bucket keys.
type Comparison struct {
	// Keys is the union of bucket keys in first-seen order.
	Keys []string `json:"keys"`
	// Series lists the display names in input order.
	Series []string `json:"series"`
	// Counts maps a display name to its counts, aligned with Keys.
	Counts map[string][]int `json:"counts"`
}
