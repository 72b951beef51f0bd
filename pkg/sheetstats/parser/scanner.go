package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
	"github.com/xuri/excelize/v2"
)

// Columns describes where event data lives in a data sheet.
type Columns struct {
	// StartRow is the first data row (1-based).
	StartRow int
	// Date is the column holding the date serial (e.g. "A").
	Date string
	// Time is the column holding the time-of-day fraction (e.g. "B").
	Time string
	// Frequency is the column holding the frequency code. Empty when unused.
	Frequency string
}

// Validate checks that the column names and start row are usable.
func (c Columns) Validate() error {
	if c.StartRow < 1 {
		return fmt.Errorf("invalid start row: %d", c.StartRow)
	}
	names := []string{c.Date, c.Time}
	if c.Frequency != "" {
		names = append(names, c.Frequency)
	}
	for _, name := range names {
		if _, err := excelize.ColumnNameToNumber(name); err != nil {
			return fmt.Errorf("invalid column %q: %w", name, err)
		}
	}
	return nil
}

// ScanStats summarizes one scan.
type ScanStats struct {
	// Rows is the number of rows visited.
	Rows int
	// Skipped counts rows without a usable date, time or allowed frequency.
	Skipped int
	// OutOfRange counts valid rows whose timestamp fell outside the range.
	OutOfRange int
	// Kept is the number of events returned.
	Kept int
}

// Scanner extracts events from the data sheets of one workbook.
type Scanner struct {
	// File is the open workbook.
	File *excelize.File
	// Columns locates the data.
	Columns Columns
	// Date1904 selects the 1904 date system.
	Date1904 bool
	// Location is the time zone decoded timestamps are placed in.
	Location *time.Location
}

// Scan walks sheetName from the start row to its last row and returns the
// events inside q.Range in row order.
//
// A nil allowed set disables the frequency filter. A non-nil set, even an
// empty one, keeps only rows whose frequency code it contains.
func (s Scanner) Scan(sheetName string, q models.Query, allowed models.FrequencySet) ([]models.Event, ScanStats, error) {
	var stats ScanStats
	if err := s.Columns.Validate(); err != nil {
		return nil, stats, err
	}
	if allowed != nil && s.Columns.Frequency == "" {
		return nil, stats, fmt.Errorf("frequency filter requires a frequency column")
	}

	lastRow, err := LastRow(s.File, sheetName)
	if err != nil {
		return nil, stats, err
	}

	dateCol := strings.ToUpper(s.Columns.Date)
	timeCol := strings.ToUpper(s.Columns.Time)
	freqCol := strings.ToUpper(s.Columns.Frequency)

	var events []models.Event
	for row := s.Columns.StartRow; row <= lastRow; row++ {
		stats.Rows++

		var (
			freq    float64
			hasFreq bool
		)
		if allowed != nil {
			freq, hasFreq = NumericCell(s.File, sheetName, cellName(freqCol, row))
			if !hasFreq || !allowed.Has(freq) {
				stats.Skipped++
				continue
			}
		}

		date, ok := NumericCell(s.File, sheetName, cellName(dateCol, row))
		if !ok || date < 0 {
			stats.Skipped++
			continue
		}
		clock, ok := NumericCell(s.File, sheetName, cellName(timeCol, row))
		if !ok || clock < 0 {
			stats.Skipped++
			continue
		}

		ts := DecodeSerial(date, clock, s.Date1904, s.Location)
		if !q.Range.Contains(ts) {
			stats.OutOfRange++
			continue
		}

		events = append(events, models.Event{
			Row:          row,
			Time:         ts,
			Frequency:    freq,
			HasFrequency: hasFreq,
		})
	}

	stats.Kept = len(events)
	return events, stats, nil
}
