package report

import (
	"testing"
	"time"

	"vehicle-info-service/internal/repository"
)

func TestLookupWorkbook(t *testing.T) {
	sources := `["carspecs"]`
	lookups := []repository.Lookup{
		{
			Canonical:    "AB12CDE",
			Jurisdiction: "UK",
			Outcome:      repository.OutcomeFound,
			Sources:      &sources,
			DurationMS:   412,
			CreatedAt:    time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		},
		{
			Canonical:    "PMN147E",
			Jurisdiction: "ISLE_OF_MAN",
			Outcome:      repository.OutcomeNotFound,
			DurationMS:   1089,
			CreatedAt:    time.Date(2026, 8, 2, 11, 30, 0, 0, time.UTC),
		},
	}

	f, err := LookupWorkbook(lookups)
	if err != nil {
		t.Fatalf("LookupWorkbook returned error: %v", err)
	}

	got, err := f.GetCellValue(sheetName, "B1")
	if err != nil || got != "Registration" {
		t.Errorf("B1 = (%q, %v), want header Registration", got, err)
	}
	got, _ = f.GetCellValue(sheetName, "B2")
	if got != "AB12CDE" {
		t.Errorf("B2 = %q, want AB12CDE", got)
	}
	got, _ = f.GetCellValue(sheetName, "D3")
	if got != repository.OutcomeNotFound {
		t.Errorf("D3 = %q, want %q", got, repository.OutcomeNotFound)
	}
	got, _ = f.GetCellValue(sheetName, "E2")
	if got != `["carspecs"]` {
		t.Errorf("E2 = %q, want sources json", got)
	}
}
