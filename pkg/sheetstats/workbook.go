package sheetstats

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// Workbook is a loaded spreadsheet. It is not modified after loading.
type Workbook struct {
	// Name is the file name (no path) the workbook was loaded from.
	Name string

	file     *excelize.File
	date1904 bool
	sheets   []string
}

// Open loads a workbook from a file path.
func Open(path string) (*Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("%w: %s", ErrFileNotFound, path)}
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Err: fmt.Errorf("%w: %w", ErrInvalidFormat, err)}
	}
	return newWorkbook(f, filepath.Base(path)), nil
}

// Load reads a workbook from r. name is used for display only.
func Load(r io.Reader, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &LoadError{Source: name, Err: fmt.Errorf("%w: %w", ErrInvalidFormat, err)}
	}
	return newWorkbook(f, filepath.Base(name)), nil
}

// NewWorkbook wraps an already open excelize file.
func NewWorkbook(f *excelize.File, name string) *Workbook {
	return newWorkbook(f, name)
}

func newWorkbook(f *excelize.File, name string) *Workbook {
	wb := &Workbook{
		Name:   name,
		file:   f,
		sheets: f.GetSheetList(),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		wb.date1904 = *props.Date1904
	}
	return wb
}

// SheetNames returns all sheet names in workbook order.
func (w *Workbook) SheetNames() []string {
	out := make([]string, len(w.sheets))
	copy(out, w.sheets)
	return out
}

// HasSheet reports whether the workbook contains a sheet named name.
func (w *Workbook) HasSheet(name string) bool {
	for _, s := range w.sheets {
		if s == name {
			return true
		}
	}
	return false
}

// Date1904 reports whether the workbook uses the 1904 date system.
func (w *Workbook) Date1904() bool {
	return w.date1904
}

// File returns the underlying excelize file.
func (w *Workbook) File() *excelize.File {
	return w.file
}

// Close releases the workbook. Later calls do nothing and File returns nil.
func (w *Workbook) Close() error {
	if w == nil || w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	return f.Close()
}
