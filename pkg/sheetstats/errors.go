package sheetstats

import (
	"errors"
	"fmt"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/parser"
)

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrInvalidFormat indicates the input is not a readable xlsx workbook.
var ErrInvalidFormat = errors.New("invalid xlsx format")

// ErrInvalidLayout indicates the workbook lacks the sheets the layout needs.
var ErrInvalidLayout = errors.New("workbook does not match layout")

// ErrSheetNotFound indicates the workbook has no sheet with the requested name.
var ErrSheetNotFound = parser.ErrSheetNotFound

// LoadError represents an error while loading a workbook.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load workbook %q: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// AnalysisError represents an error while analyzing a series.
type AnalysisError struct {
	Series    string
	Component string // "names", "query", "scan"
	Err       error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis error in series %q (%s): %v", e.Series, e.Component, e.Err)
}

func (e *AnalysisError) Unwrap() error {
	return e.Err
}

// NewAnalysisError creates a new AnalysisError.
func NewAnalysisError(series, component string, err error) *AnalysisError {
	return &AnalysisError{
		Series:    series,
		Component: component,
		Err:       err,
	}
}
