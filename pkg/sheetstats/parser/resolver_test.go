package parser

import (
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestResolveNames(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"
	f.SetCellValue(sheetName, "A1", "Name")
	f.SetCellValue(sheetName, "B1", "Code")
	rows := []struct {
		name string
		code interface{}
	}{
		{"Alpha", 101},
		{"Beta", 202.5},
		{"Alpha", 101},
		{" Alpha ", 103},
		{"", 5},
		{"Gamma", "n/a"},
	}
	for i, r := range rows {
		f.SetCellValue(sheetName, cellName("A", i+2), r.name)
		f.SetCellValue(sheetName, cellName("B", i+2), r.code)
	}

	index, err := ResolveNames(f, sheetName, LookupColumns{StartRow: 2, Name: "A", Code: "B"})
	if err != nil {
		t.Fatalf("ResolveNames failed: %v", err)
	}

	if len(index.Names) != 2 || index.Names[0] != "Alpha" || index.Names[1] != "Beta" {
		t.Errorf("Expected names [Alpha Beta], got %v", index.Names)
	}
	alpha := index.Lookup("Alpha")
	if len(alpha) != 2 || !alpha.Has(101) || !alpha.Has(103) {
		t.Errorf("Expected Alpha codes {101, 103}, got %v", alpha)
	}
	if beta := index.Lookup("Beta"); len(beta) != 1 || !beta.Has(202.5) {
		t.Errorf("Expected Beta codes {202.5}, got %v", beta)
	}
	if gamma := index.Lookup("Gamma"); gamma == nil || len(gamma) != 0 {
		t.Errorf("Expected empty non-nil set for Gamma, got %v", gamma)
	}
}

func TestResolveNamesInvalidColumns(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	if _, err := ResolveNames(f, "Sheet1", LookupColumns{StartRow: 0, Name: "A", Code: "B"}); err == nil {
		t.Error("Expected error for start row 0")
	}
	if _, err := ResolveNames(f, "Sheet1", LookupColumns{StartRow: 1, Name: "A", Code: ""}); err == nil {
		t.Error("Expected error for empty code column")
	}
}
