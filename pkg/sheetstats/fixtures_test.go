package sheetstats

import (
	"fmt"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func serials(t time.Time) (float64, float64) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return float64(day.Sub(excelEpoch) / (24 * time.Hour)), float64(t.Hour()*60+t.Minute()) / (24 * 60)
}

type row struct {
	at   time.Time
	freq float64
}

// writeRows fills sheetName from row 4 in the A (date) / B (time) / C (frequency) layout.
func writeRows(t *testing.T, f *excelize.File, sheetName string, rows ...row) {
	t.Helper()
	for i, r := range rows {
		n := i + 4
		date, clock := serials(r.at)
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", n), date)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", n), clock)
		if r.freq != 0 {
			f.SetCellValue(sheetName, fmt.Sprintf("C%d", n), r.freq)
		}
	}
}

func newSheet(t *testing.T, f *excelize.File, name string) {
	t.Helper()
	if _, err := f.NewSheet(name); err != nil {
		t.Fatalf("NewSheet(%s): %v", name, err)
	}
}

// sheetsWorkbook builds a workbook in the sheet-per-series layout.
func sheetsWorkbook(t *testing.T) *Workbook {
	t.Helper()
	f := excelize.NewFile()

	newSheet(t, f, "north")
	f.SetCellValue("north", "A1", "North network")
	writeRows(t, f, "north",
		row{at: at(2024, 1, 2, 10, 0)},
		row{at: at(2024, 1, 2, 15, 30)},
		row{at: at(2024, 1, 3, 9, 0)},
	)

	newSheet(t, f, "south")
	writeRows(t, f, "south", row{at: at(2024, 1, 1, 23, 59)})

	newSheet(t, f, "Посилання")
	if err := f.DeleteSheet("Sheet1"); err != nil {
		t.Fatalf("DeleteSheet: %v", err)
	}
	return NewWorkbook(f, "networks.xlsx")
}

// lookupWorkbook builds a workbook in the shared data sheet layout.
func lookupWorkbook(t *testing.T) *Workbook {
	t.Helper()
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", "Data")
	writeRows(t, f, "Data",
		row{at: at(2024, 1, 1, 8, 0), freq: 145.5},
		row{at: at(2024, 1, 1, 9, 0), freq: 433},
		row{at: at(2024, 1, 2, 8, 0), freq: 145.5},
		row{at: at(2024, 1, 2, 8, 30), freq: 146},
		row{at: at(2024, 1, 3, 12, 0), freq: 433},
		row{at: at(2024, 1, 3, 13, 0), freq: 999},
	)

	newSheet(t, f, "Lookup")
	f.SetCellValue("Lookup", "A1", "Name")
	f.SetCellValue("Lookup", "B1", "Code")
	lookup := []struct {
		name string
		code float64
	}{
		{"Alpha", 145.5},
		{"Bravo", 433},
		{"Alpha", 146},
		{"Alpha", 145.5},
	}
	for i, l := range lookup {
		f.SetCellValue("Lookup", fmt.Sprintf("A%d", i+2), l.name)
		f.SetCellValue("Lookup", fmt.Sprintf("B%d", i+2), l.code)
	}
	return NewWorkbook(f, "shared.xlsx")
}

func dayQuery(from, to time.Time) models.Query {
	return models.Query{Range: models.DayRange(from, to), Granularity: models.GranularityDay}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Location = time.UTC
	return opts
}

func testLookupOptions() Options {
	opts := DefaultLookupOptions()
	opts.Location = time.UTC
	return opts
}
