package engine

import (
	"fmt"
	"strconv"
	"strings"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from a subset
// ============================================================================
// Hosts without a chart surface (the CLI text format) show the subset as a
// table instead. Column kinds come from view.MeasureKeys().
// ============================================================================

// BuildTable lists the subset's rows for the given columns; all dimension
// keys when none are named. Numeric columns are right-aligned and totalled.
func BuildTable(title string, view RecordView, columns ...string) *TableData {
	if len(columns) == 0 {
		columns = view.DimensionKeys()
	}
	numeric := make(map[string]bool)
	for _, k := range view.MeasureKeys() {
		numeric[k] = true
	}

	cols := make([]Column, 0, len(columns))
	for _, key := range columns {
		c := Column{Key: key, Label: LabelForDimension(key), Type: "text", Align: "left"}
		if numeric[key] {
			c.Type = "number"
			c.Align = "right"
		}
		cols = append(cols, c)
	}

	rows := make([][]string, 0, view.Len())
	totals := make(map[string]float64)
	for i := 0; i < view.Len(); i++ {
		row := make([]string, 0, len(columns))
		for _, key := range columns {
			row = append(row, view.Dimension(i, key))
			if numeric[key] {
				totals[key] += view.Measure(i, key)
			}
		}
		rows = append(rows, row)
	}

	table := &TableData{
		Title:   title,
		Columns: cols,
		Rows:    rows,
	}
	if view.Len() > 0 {
		table.Summary = &Summary{
			Label:  fmt.Sprintf("Total (%s rows)", FormatInt(view.Len())),
			Values: make(map[string]string, len(totals)),
		}
		for k, v := range totals {
			table.Summary.Values[k] = strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return table
}

// Text renders the table as aligned plain text.
func (t *TableData) Text() string {
	widths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		widths[i] = len(c.Label)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString(t.Title)
		b.WriteByte('\n')
	}
	writeRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				b.WriteString("  ")
			}
			pad := strings.Repeat(" ", widths[i]-len(cell))
			if t.Columns[i].Align == "right" {
				b.WriteString(pad + cell)
			} else {
				b.WriteString(cell + pad)
			}
		}
		b.WriteByte('\n')
	}

	labels := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		labels[i] = c.Label
	}
	writeRow(labels)
	for _, row := range t.Rows {
		writeRow(row)
	}
	if t.Summary != nil {
		b.WriteString(t.Summary.Label)
		b.WriteByte('\n')
	}
	return b.String()
}
