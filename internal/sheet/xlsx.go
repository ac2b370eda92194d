package sheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

func readXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("no worksheet found")
	}

	grid, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("unable to read sheet %q: %w", sheetName, err)
	}
	return fromGrid(grid)
}

// Column describes one exported column.
type Column struct {
	Header string
	Width  float64
}

// WriteXLSX writes one worksheet with a bold header row followed by rows,
// each row holding one value per column.
func WriteXLSX(w io.Writer, sheetName string, columns []Column, rows [][]any) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, c := range columns {
		colName, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheetName, colName, colName, c.Width); err != nil {
			return fmt.Errorf("failed to set width of column %s: %w", colName, err)
		}
		cell := colName + "1"
		if err := f.SetCellValue(sheetName, cell, c.Header); err != nil {
			return fmt.Errorf("failed to write header %q: %w", c.Header, err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, bold); err != nil {
			return fmt.Errorf("failed to style header %q: %w", c.Header, err)
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(sheetName, cell, &r); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
