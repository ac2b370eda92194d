// Package sheet reads and writes header-keyed tables from spreadsheets.
package sheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Table is a header row plus data rows keyed by header label.
type Table struct {
	Headers []string
	Rows    []map[string]string
}

// Format identifies a supported spreadsheet encoding.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatOf picks the format from a file name's extension.
func FormatOf(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported spreadsheet type %q: only .xlsx and .csv files are allowed", filepath.Ext(name))
	}
}

// ReadFile opens path and reads its first worksheet.
func ReadFile(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Read(bytes.NewReader(data), format)
}

// Read parses r in the given format.
func Read(r io.Reader, format Format) (*Table, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r)
	case FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported spreadsheet format %q", format)
	}
}

// fromGrid turns raw rows into a Table. The first row is the header; blank
// header cells are dropped, short rows are padded and fully blank rows skipped.
func fromGrid(grid [][]string) (*Table, error) {
	if len(grid) == 0 {
		return nil, fmt.Errorf("worksheet is empty")
	}

	headers := make([]string, 0, len(grid[0]))
	columns := make([]int, 0, len(grid[0]))
	for i, h := range grid[0] {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		headers = append(headers, h)
		columns = append(columns, i)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("no header row found")
	}

	rows := make([]map[string]string, 0, len(grid)-1)
	for _, raw := range grid[1:] {
		row := make(map[string]string, len(headers))
		blank := true
		for j, col := range columns {
			var v string
			if col < len(raw) {
				v = strings.TrimSpace(raw[col])
			}
			if v != "" {
				blank = false
			}
			row[headers[j]] = v
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}

	return &Table{Headers: headers, Rows: rows}, nil
}
