// Package parser reads timestamped events and name lookups out of worksheets.
package parser

import (
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// NumericCell returns the value of a cell holding a number.
// Blank cells, text, booleans, errors and string formula results report false.
func NumericCell(f *excelize.File, sheetName, cellName string) (float64, bool) {
	cellType, err := f.GetCellType(sheetName, cellName)
	if err != nil {
		return 0, false
	}
	switch cellType {
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
	default:
		return 0, false
	}

	raw, err := f.GetCellValue(sheetName, cellName, excelize.Options{RawCellValue: true})
	if err != nil {
		return 0, false
	}
	return parseNumber(raw)
}

// TextCell returns the formatted, trimmed value of a cell.
func TextCell(f *excelize.File, sheetName, cellName string) string {
	value, err := f.GetCellValue(sheetName, cellName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}

// parseNumber parses a raw cell value as a float.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// cellName joins a column name and a 1-based row index.
func cellName(col string, row int) string {
	return col + strconv.Itoa(row)
}
