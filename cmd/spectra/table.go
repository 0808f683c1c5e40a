package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one column of a rendered listing. Numeric columns
// set right so counts line up under the header.
type tableColumn struct {
	title string
	right bool
}

// renderTable draws rows under the given columns in the rounded style. Short
// rows are padded and empty cells show as a dash.
func renderTable(columns []tableColumn, rows [][]string) string {
	if len(columns) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.title
		align := text.AlignLeft
		if col.right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			if cell == "" {
				cell = "-"
			}
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	return tw.Render()
}
