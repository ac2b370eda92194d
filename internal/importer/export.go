package importer

import (
	"context"
	"io"

	"seat-occupancy-backend/internal/apperr"
	"seat-occupancy-backend/internal/sheet"
)

// ExportSheetName is the worksheet written by Export.
const ExportSheetName = "Office Space"

var exportColumns = []sheet.Column{
	{Header: "Seat Number", Width: 15},
	{Header: "Building", Width: 15},
	{Header: "Floor", Width: 10},
	{Header: "Status", Width: 10},
	{Header: "Employee Number", Width: 15},
	{Header: "First Name", Width: 15},
	{Header: "Last Name", Width: 15},
	{Header: "Email", Width: 25},
	{Header: "Business Group", Width: 20},
	{Header: "Department", Width: 20},
}

// Export writes every seat with its occupant to w as an xlsx workbook,
// sorted by seat id.
func (p *Pipeline) Export(ctx context.Context, w io.Writer) error {
	rows, err := p.store.ExportRows(ctx)
	if err != nil {
		return err
	}

	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.SeatID, r.Building, r.Floor, r.Status,
			deref(r.EmployeeNumber), deref(r.FirstName), deref(r.LastName),
			deref(r.Email), deref(r.BusinessGroup), deref(r.Department),
		})
	}

	if err := sheet.WriteXLSX(w, ExportSheetName, exportColumns, out); err != nil {
		return apperr.IO(err, "failed to write export workbook")
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
