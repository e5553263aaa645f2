// Package export renders result sets as downloadable CSV, JSON and XLSX
// documents.
package export

import (
	"strings"

	"github.com/nravi/leadgrid/internal/record"
)

var newlines = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// CSV renders records as comma-separated text. Every value is quoted with
// embedded quotes doubled; newlines inside values collapse to a single
// space so each record stays on one line. Missing fields render as the
// placeholder cell. encoding/csv is not used here because it preserves
// newlines inside quoted fields, and downstream spreadsheet imports of
// these exports expect one line per record.
func CSV(records []record.Record, cols []record.Column) string {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte(',')
		}
		writeCell(&b, c.Header)
	}
	b.WriteByte('\n')
	for _, r := range records {
		for i, c := range cols {
			if i > 0 {
				b.WriteByte(',')
			}
			cell, _ := record.Cell(r, c)
			writeCell(&b, cell)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func writeCell(b *strings.Builder, s string) {
	s = newlines.Replace(s)
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(s, `"`, `""`))
	b.WriteByte('"')
}
