package chart

import (
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/models"
	"github.com/ukaji3/sheetstats-go/pkg/sheetstats/timeline"
)

// Table renders series side by side, one row per bucket key and a totals footer.
func Table(series []models.Series) string {
	cmp := timeline.Compare(series...)

	t := table.NewWriter()
	header := table.Row{"Period"}
	footer := table.Row{"Total"}
	for _, name := range cmp.Series {
		header = append(header, name)
		total := 0
		for _, c := range cmp.Counts[name] {
			total += c
		}
		footer = append(footer, total)
	}
	t.AppendHeader(header)

	for i, key := range cmp.Keys {
		row := table.Row{key}
		for _, name := range cmp.Series {
			row = append(row, cmp.Counts[name][i])
		}
		t.AppendRow(row)
	}
	t.AppendFooter(footer)
	t.SetStyle(table.StyleLight)

	return t.Render()
}
