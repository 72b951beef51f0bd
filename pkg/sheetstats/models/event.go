// Package models defines data structures for sheet analysis.
package models

import "time"

// Event represents one timestamped row extracted from a data sheet.
type Event struct {
	// Row is the row index (1-based).
	Row int `json:"row"`
	// Time is the decoded date and time of the row.
	Time time.Time `json:"time"`
	// Frequency is the frequency code of the row (lookup layout only).
	Frequency float64 `json:"frequency,omitempty"`
	// HasFrequency reports whether Frequency was read from the row.
	HasFrequency bool `json:"-"`
}
