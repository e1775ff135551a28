// Package report renders the lookup audit trail into spreadsheets for the
// admin export endpoint.
package report

import (
	"time"

	"github.com/xuri/excelize/v2"

	"vehicle-info-service/internal/repository"
)

const sheetName = "Lookups"

var headers = []string{"Time", "Registration", "Jurisdiction", "Outcome", "Sources", "Duration (ms)"}

// LookupWorkbook builds a workbook with one row per audit entry, newest
// first as the rows arrive from the repository.
func LookupWorkbook(lookups []repository.Lookup) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for row, entry := range lookups {
		values := []interface{}{
			entry.CreatedAt.Format(time.RFC3339),
			entry.Canonical,
			entry.Jurisdiction,
			entry.Outcome,
			derefString(entry.Sources),
			entry.DurationMS,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 22)
	_ = f.SetColWidth(sheetName, "B", "D", 16)
	_ = f.SetColWidth(sheetName, "E", "E", 32)

	return f, nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
