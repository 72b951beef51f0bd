package parser

import (
	"time"

	"github.com/xuri/excelize/v2"
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// serials splits t into the date serial and time-of-day fraction a spreadsheet stores.
func serials(t time.Time) (float64, float64) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	date := float64(day.Sub(excelEpoch) / (24 * time.Hour))
	clock := float64(t.Hour()*60+t.Minute()) / (24 * 60)
	return date, clock
}

// setEvent writes one data row in the A/B/C layout.
func setEvent(f *excelize.File, sheetName string, row int, t time.Time, freq float64) {
	date, clock := serials(t)
	f.SetCellValue(sheetName, cellName("A", row), date)
	f.SetCellValue(sheetName, cellName("B", row), clock)
	if freq != 0 {
		f.SetCellValue(sheetName, cellName("C", row), freq)
	}
}

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}
