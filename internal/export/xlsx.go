package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/nravi/leadgrid/internal/record"
)

// XLSX renders records as a single-sheet workbook. Cell projection follows
// the same rules as CSV: missing fields become the placeholder, multi-value
// fields join with "; ".
func XLSX(sheet string, records []record.Record, cols []record.Column) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Results"
	}
	f.SetSheetName("Sheet1", sheet)

	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, fmt.Errorf("addressing header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, c.Header); err != nil {
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}
	for row, r := range records {
		for i, c := range cols {
			cell, err := excelize.CoordinatesToCellName(i+1, row+2)
			if err != nil {
				return nil, fmt.Errorf("addressing cell: %w", err)
			}
			val, _ := record.Cell(r, c)
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("writing row %d: %w", row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	return buf.Bytes(), nil
}
