// Package view presents result records in the terminal: summary tables,
// per-record detail, score bands and row expansion state.
package view

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/nravi/leadgrid/internal/record"
)

// RenderTable writes one row per record, projecting cells through cols the
// same way the exporters do.
func RenderTable(w io.Writer, records []record.Record, cols []record.Column) {
	table := tablewriter.NewWriter(w)
	headers := make([]any, len(cols))
	for i, c := range cols {
		headers[i] = c.Header
	}
	table.Header(headers...)

	for _, r := range records {
		row := make([]any, len(cols))
		for i, c := range cols {
			cell, _ := record.Cell(r, c)
			row[i] = cell
		}
		table.Append(row...)
	}
	table.Render()
}

// RenderDetail writes every field of a record, one per line, in the order
// the backend sent them. List and sub-record fields flatten through
// Display.
func RenderDetail(w io.Writer, r record.Record) {
	width := 0
	for _, f := range r.Fields() {
		if len(f) > width {
			width = len(f)
		}
	}
	for _, f := range r.Fields() {
		v, _ := r.Get(f)
		text := v.Display()
		if text == "" {
			text = record.Sentinel
		}
		fmt.Fprintf(w, "%-*s  %s\n", width+1, f+":", text)
	}
}
