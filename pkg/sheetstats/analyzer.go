package sheetstats

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/parser"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/timeline"
)

// Analyzer turns the loaded workbook into bucketed series.
//
// An Analyzer owns its workbook and is not safe for concurrent use.
// Each Analyze call depends only on its arguments and the loaded workbook;
// the one piece of derived state, the lookup name index, is built on first
// use and dropped when another workbook is loaded.
type Analyzer struct {
	opts  Options
	wb    *Workbook
	names *models.NameIndex
}

// NewAnalyzer creates an Analyzer with no workbook loaded.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{opts: opts}, nil
}

// Options returns the options the Analyzer was created with.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Load replaces the current workbook with wb and closes the previous one.
// In the lookup layout wb must contain the data and lookup sheets.
func (a *Analyzer) Load(wb *Workbook) error {
	if wb == nil {
		return fmt.Errorf("%w: nil workbook", ErrInvalidLayout)
	}
	if a.opts.Layout == LayoutLookup {
		for _, sheet := range []string{a.opts.DataSheet, a.opts.LookupSheet} {
			if !wb.HasSheet(sheet) {
				return fmt.Errorf("%w: missing sheet %q", ErrInvalidLayout, sheet)
			}
		}
	}

	prev := a.wb
	a.wb = wb
	a.names = nil
	if prev != nil && prev != wb {
		if err := prev.Close(); err != nil {
			a.opts.logger().Warn("failed to close previous workbook",
				slog.String("workbook", prev.Name),
				slog.String("error", err.Error()))
		}
	}

	a.opts.logger().Info("workbook loaded",
		slog.String("workbook", wb.Name),
		slog.Int("sheets", len(wb.sheets)),
		slog.String("layout", string(a.opts.Layout)),
		slog.Bool("date1904", wb.date1904))
	return nil
}

// Loaded reports whether a workbook is loaded.
func (a *Analyzer) Loaded() bool {
	return a.wb != nil
}

// Workbook returns the loaded workbook, or nil.
func (a *Analyzer) Workbook() *Workbook {
	return a.wb
}

// Close releases the loaded workbook.
func (a *Analyzer) Close() error {
	wb := a.wb
	a.wb = nil
	a.names = nil
	return wb.Close()
}

// SeriesNames returns the identifiers that can be passed to Analyze.
// Without a workbook it returns an empty list.
func (a *Analyzer) SeriesNames() ([]string, error) {
	if a.wb == nil {
		return []string{}, nil
	}

	if a.opts.Layout == LayoutLookup {
		index, err := a.nameIndex()
		if err != nil {
			return nil, err
		}
		out := make([]string, len(index.Names))
		copy(out, index.Names)
		return out, nil
	}

	names := []string{}
	for _, sheet := range a.wb.sheets {
		if a.opts.IsServiceSheet(sheet) {
			continue
		}
		names = append(names, sheet)
	}
	return names, nil
}

// Analyze counts the events of one series over q.
//
// Without a workbook it returns an empty Series and no error. In the lookup
// layout a name missing from the lookup sheet yields an all-zero series.
func (a *Analyzer) Analyze(series string, q models.Query) (models.Series, error) {
	if a.wb == nil {
		return models.Series{Buckets: []models.Bucket{}}, nil
	}
	if !q.Granularity.Valid() {
		return models.Series{}, NewAnalysisError(series, "query", fmt.Errorf("invalid granularity: %q", q.Granularity))
	}

	var (
		sheet   string
		allowed models.FrequencySet
		display string
	)
	switch a.opts.Layout {
	case LayoutLookup:
		index, err := a.nameIndex()
		if err != nil {
			return models.Series{}, err
		}
		sheet = a.opts.DataSheet
		allowed = index.Lookup(series)
		display = series
	default:
		sheet = series
		display = a.title(series)
	}

	events, stats, err := a.scanner().Scan(sheet, q, allowed)
	if err != nil {
		return models.Series{}, NewAnalysisError(series, "scan", err)
	}

	a.opts.logger().Debug("sheet scanned",
		slog.String("series", series),
		slog.String("sheet", sheet),
		slog.Int("rows", stats.Rows),
		slog.Int("skipped", stats.Skipped),
		slog.Int("out_of_range", stats.OutOfRange),
		slog.Int("events", stats.Kept))

	return models.Series{
		Name:        series,
		DisplayName: display,
		Granularity: q.Granularity,
		Buckets:     timeline.Bucketize(events, q),
	}, nil
}

// AnalyzeMany analyzes each series over the same query, preserving order.
func (a *Analyzer) AnalyzeMany(series []string, q models.Query) ([]models.Series, error) {
	out := make([]models.Series, 0, len(series))
	for _, name := range series {
		s, err := a.Analyze(name, q)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (a *Analyzer) scanner() parser.Scanner {
	return parser.Scanner{
		File:     a.wb.file,
		Columns:  a.opts.Columns,
		Date1904: a.wb.date1904,
		Location: a.opts.location(),
	}
}

// title returns the display name stored in the title cell of sheet,
// falling back to the sheet name.
func (a *Analyzer) title(sheet string) string {
	if a.opts.TitleCell == "" || !a.wb.HasSheet(sheet) {
		return sheet
	}
	if name := parser.TextCell(a.wb.file, sheet, a.opts.TitleCell); name != "" {
		return name
	}
	return sheet
}

func (a *Analyzer) nameIndex() (models.NameIndex, error) {
	if a.names != nil {
		return *a.names, nil
	}
	index, err := parser.ResolveNames(a.wb.file, a.opts.LookupSheet, a.opts.Lookup)
	if err != nil {
		return models.NameIndex{}, NewAnalysisError(a.opts.LookupSheet, "names", err)
	}
	a.names = &index
	a.opts.logger().Debug("lookup names resolved",
		slog.String("sheet", a.opts.LookupSheet),
		slog.Int("names", len(index.Names)))
	return index, nil
}

// Location returns the time zone timestamps are read in.
func (a *Analyzer) Location() *time.Location {
	return a.opts.location()
}
