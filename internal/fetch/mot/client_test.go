package mot

import (
	"testing"

	"vehicle-info-service/internal/domain/vehicle"
)

func TestMapTestsSortsMostRecentFirst(t *testing.T) {
	raw := []apiTest{
		{CompletedDate: "2021-03-01T09:00:00Z", TestResult: "PASSED", ExpiryDate: "2022-03-01", MOTTestNumber: "1"},
		{CompletedDate: "2023-03-01T09:00:00Z", TestResult: "FAILED", MOTTestNumber: "3"},
		{CompletedDate: "2022-03-01T09:00:00Z", TestResult: "PASSED", ExpiryDate: "2023-03-01", MOTTestNumber: "2"},
	}

	tests := mapTests(raw)
	if len(tests) != 3 {
		t.Fatalf("mapTests returned %d tests, want 3", len(tests))
	}
	for i, wantNumber := range []string{"3", "2", "1"} {
		if tests[i].TestNumber != wantNumber {
			t.Errorf("tests[%d].TestNumber = %q, want %q", i, tests[i].TestNumber, wantNumber)
		}
	}
}

func TestMapTestsExpiryOnlyOnPass(t *testing.T) {
	raw := []apiTest{
		{CompletedDate: "2023-03-01T09:00:00Z", TestResult: "FAILED", ExpiryDate: "2024-03-01", MOTTestNumber: "1"},
	}

	tests := mapTests(raw)
	if tests[0].ExpiryDate != "" {
		t.Errorf("failed test carried expiry date %q", tests[0].ExpiryDate)
	}
}

func TestMapTestsOdometer(t *testing.T) {
	raw := []apiTest{
		{
			CompletedDate:      "2023-03-01T09:00:00Z",
			TestResult:         "PASSED",
			OdometerValue:      "64,211",
			OdometerUnit:       "mi",
			OdometerResultType: "READ",
		},
		{
			CompletedDate:      "2022-03-01T09:00:00Z",
			TestResult:         "PASSED",
			OdometerValue:      "1",
			OdometerUnit:       "mi",
			OdometerResultType: "UNREADABLE",
		},
	}

	tests := mapTests(raw)
	if tests[0].Odometer != 64211 || tests[0].OdometerUnit != "mi" {
		t.Errorf("read odometer = (%d, %q), want (64211, mi)", tests[0].Odometer, tests[0].OdometerUnit)
	}
	if tests[1].Odometer != 0 || tests[1].OdometerUnit != "" {
		t.Errorf("unreadable odometer = (%d, %q), want zero values", tests[1].Odometer, tests[1].OdometerUnit)
	}
}

func TestMapDefectKind(t *testing.T) {
	tests := []struct {
		input    string
		expected vehicle.DefectKind
	}{
		{"ADVISORY", vehicle.DefectAdvisory},
		{"Minor", vehicle.DefectMinor},
		{"major", vehicle.DefectMajor},
		{"DANGEROUS", vehicle.DefectDangerous},
		{"FAIL", vehicle.DefectFail},
		{"PRS", vehicle.DefectPassedRiskStatement},
		{"USER ENTERED", vehicle.DefectAdvisory},
		{"", vehicle.DefectAdvisory},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := mapDefectKind(tt.input); got != tt.expected {
				t.Errorf("mapDefectKind(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
