package parser

import (
	"time"

	"github.com/xuri/excelize/v2"
)

// DecodeSerial converts a spreadsheet date serial and time-of-day fraction
// into a timestamp in loc with minute resolution.
// Both values must be non-negative; callers filter invalid cells first.
func DecodeSerial(date, clock float64, date1904 bool, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	t, err := excelize.ExcelDateToTime(date+clock, date1904)
	if err != nil {
		return time.Time{}
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, loc)
}
