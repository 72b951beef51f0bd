// Package sheetstats counts timestamped spreadsheet events per day or hour.
package sheetstats

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/parser"
	"github.com/xuri/excelize/v2"
)

// Layout represents how series are laid out in a workbook.
type Layout string

const (
	// LayoutSheets keeps one series per sheet; the series identifier is the sheet name.
	LayoutSheets Layout = "sheets"
	// LayoutLookup keeps all events on one data sheet; a lookup sheet maps
	// display names to the frequency codes identifying their rows.
	LayoutLookup Layout = "lookup"
)

// ParseLayout parses "sheets" or "lookup".
func ParseLayout(s string) (Layout, error) {
	switch Layout(strings.ToLower(strings.TrimSpace(s))) {
	case LayoutSheets:
		return LayoutSheets, nil
	case LayoutLookup:
		return LayoutLookup, nil
	default:
		return "", fmt.Errorf("invalid layout: %s (must be sheets or lookup)", s)
	}
}

// Options configures how workbooks are read.
type Options struct {
	// Layout selects the workbook layout.
	Layout Layout
	// Columns locates event rows on data sheets.
	Columns parser.Columns
	// TitleCell holds the display name of a sheet (sheets layout). Empty disables it.
	TitleCell string
	// ServiceSheets are hidden from series names (case-insensitive).
	ServiceSheets []string
	// DataSheet is the shared event sheet (lookup layout).
	DataSheet string
	// LookupSheet maps display names to frequency codes (lookup layout).
	LookupSheet string
	// Lookup locates names and codes on the lookup sheet.
	Lookup parser.LookupColumns
	// Location is the time zone spreadsheet timestamps are read in.
	// If nil, defaults to time.Local.
	Location *time.Location
	// Logger receives scan summaries. If nil, defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options for the sheet-per-series layout.
func DefaultOptions() Options {
	return Options{
		Layout: LayoutSheets,
		Columns: parser.Columns{
			StartRow: 4,
			Date:     "A",
			Time:     "B",
		},
		TitleCell:     "A1",
		ServiceSheets: []string{"Посилання", "Пошук"},
		DataSheet:     "Data",
		LookupSheet:   "Lookup",
		Lookup: parser.LookupColumns{
			StartRow: 2,
			Name:     "A",
			Code:     "B",
		},
	}
}

// DefaultLookupOptions returns the options for the shared data sheet layout.
func DefaultLookupOptions() Options {
	opts := DefaultOptions()
	opts.Layout = LayoutLookup
	opts.Columns.Frequency = "C"
	opts.TitleCell = ""
	return opts
}

// ShouldFilterFrequency returns whether rows are attributed by frequency code.
func (o Options) ShouldFilterFrequency() bool {
	return o.Layout == LayoutLookup
}

// IsServiceSheet returns whether name is one of the service sheets.
func (o Options) IsServiceSheet(name string) bool {
	for _, s := range o.ServiceSheets {
		if strings.EqualFold(strings.TrimSpace(s), strings.TrimSpace(name)) {
			return true
		}
	}
	return false
}

// Validate checks the options for the selected layout.
func (o Options) Validate() error {
	switch o.Layout {
	case LayoutSheets:
	case LayoutLookup:
		if o.Columns.Frequency == "" {
			return fmt.Errorf("lookup layout requires a frequency column")
		}
		if o.DataSheet == "" || o.LookupSheet == "" {
			return fmt.Errorf("lookup layout requires data and lookup sheet names")
		}
		if err := o.Lookup.Validate(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid layout: %q", o.Layout)
	}

	if err := o.Columns.Validate(); err != nil {
		return err
	}
	if o.TitleCell != "" {
		if _, _, err := excelize.CellNameToCoordinates(o.TitleCell); err != nil {
			return fmt.Errorf("invalid title cell %q: %w", o.TitleCell, err)
		}
	}
	return nil
}

func (o Options) location() *time.Location {
	if o.Location != nil {
		return o.Location
	}
	return time.Local
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}
