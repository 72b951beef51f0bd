package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound indicates the workbook has no sheet with the requested name.
var ErrSheetNotFound = errors.New("sheet not found")

// Area holds cell coordinate bounds (1-based, inclusive).
type Area struct {
	R1, C1, R2, C2 int
}

// checkSheet returns ErrSheetNotFound when sheetName is not part of the workbook.
func checkSheet(f *excelize.File, sheetName string) error {
	idx, err := f.GetSheetIndex(sheetName)
	if err != nil || idx < 0 {
		return fmt.Errorf("%w: %q", ErrSheetNotFound, sheetName)
	}
	return nil
}

// LastRow returns the last populated row of a sheet.
// It takes the larger of the declared dimension and the rows actually
// stored, since not every writer keeps the dimension up to date.
func LastRow(f *excelize.File, sheetName string) (int, error) {
	if err := checkSheet(f, sheetName); err != nil {
		return 0, err
	}

	declared := 0
	if dim, err := f.GetSheetDimension(sheetName); err == nil {
		if area := parseRangeToArea(dim); area != nil {
			declared = area.R2
		}
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return 0, err
	}
	stored := 0
	if _, maxRow := findRowBounds(rows); maxRow >= 0 {
		stored = maxRow + 1
	}

	if stored > declared {
		return stored, nil
	}
	return declared, nil
}

// parseRangeToArea parses a range string like $A$1:$D$10 or a single cell like B7.
func parseRangeToArea(rangeStr string) *Area {
	rangeStr = strings.ReplaceAll(strings.TrimSpace(rangeStr), "$", "")
	if rangeStr == "" {
		return nil
	}

	parts := strings.Split(rangeStr, ":")
	if len(parts) == 1 {
		parts = append(parts, parts[0])
	}
	if len(parts) != 2 {
		return nil
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return nil
	}
	endCol, endRow, err := excelize.CellNameToCoordinates(parts[1])
	if err != nil {
		return nil
	}

	return &Area{R1: startRow, C1: startCol, R2: endRow, C2: endCol}
}

// findRowBounds finds the first and last row index (0-based) holding a non-empty cell.
func findRowBounds(rows [][]string) (minRow, maxRow int) {
	minRow, maxRow = -1, -1
	for rowIdx, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				continue
			}
			if minRow < 0 {
				minRow = rowIdx
			}
			maxRow = rowIdx
			break
		}
	}
	return
}
