package parser

import (
	"fmt"
	"strings"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
	"github.com/xuri/excelize/v2"
)

// LookupColumns describes where names and frequency codes live in a lookup sheet.
type LookupColumns struct {
	// StartRow is the first lookup row (1-based).
	StartRow int
	// Name is the column holding the display name.
	Name string
	// Code is the column holding the frequency code.
	Code string
}

// Validate checks that the column names and start row are usable.
func (c LookupColumns) Validate() error {
	if c.StartRow < 1 {
		return fmt.Errorf("invalid lookup start row: %d", c.StartRow)
	}
	for _, name := range []string{c.Name, c.Code} {
		if _, err := excelize.ColumnNameToNumber(name); err != nil {
			return fmt.Errorf("invalid lookup column %q: %w", name, err)
		}
	}
	return nil
}

// ResolveNames builds the display name to frequency code mapping of a lookup sheet.
// Rows with a blank name or a non-numeric code are skipped.
func ResolveNames(f *excelize.File, sheetName string, cols LookupColumns) (models.NameIndex, error) {
	index := models.NameIndex{Codes: make(map[string]models.FrequencySet)}
	if err := cols.Validate(); err != nil {
		return index, err
	}

	lastRow, err := LastRow(f, sheetName)
	if err != nil {
		return index, err
	}

	nameCol := strings.ToUpper(cols.Name)
	codeCol := strings.ToUpper(cols.Code)
	for row := cols.StartRow; row <= lastRow; row++ {
		name := TextCell(f, sheetName, cellName(nameCol, row))
		if name == "" {
			continue
		}
		code, ok := NumericCell(f, sheetName, cellName(codeCol, row))
		if !ok {
			continue
		}

		codes, seen := index.Codes[name]
		if !seen {
			codes = make(models.FrequencySet)
			index.Codes[name] = codes
			index.Names = append(index.Names, name)
		}
		codes.Add(code)
	}

	return index, nil
}
