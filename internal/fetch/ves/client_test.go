package ves

import (
	"testing"

	"vehicle-info-service/internal/domain/vehicle"
)

func TestMapTaxStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected vehicle.TaxStatus
	}{
		{"Taxed", vehicle.TaxStatusTaxed},
		{"taxed", vehicle.TaxStatusTaxed},
		{"SORN", vehicle.TaxStatusSORN},
		{"Not Taxed for on Road Use", vehicle.TaxStatusNotTaxedForRoadUse},
		{"Untaxed", vehicle.TaxStatusUntaxed},
		{"", vehicle.TaxStatusUntaxed},
		{"something else", vehicle.TaxStatusUntaxed},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := mapTaxStatus(tt.input); got != tt.expected {
				t.Errorf("mapTaxStatus(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMapMOTStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected vehicle.MOTStatus
	}{
		{"Valid", vehicle.MOTStatusValid},
		{"No details held by DVLA", vehicle.MOTStatusNoDetailsHeld},
		{"Not valid", vehicle.MOTStatusNotValid},
		{"", vehicle.MOTStatusNotValid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := mapMOTStatus(tt.input); got != tt.expected {
				t.Errorf("mapMOTStatus(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestUnconfiguredClientIsUnavailable(t *testing.T) {
	c := &Client{}
	if c.Configured() {
		t.Error("zero client reported itself configured")
	}
}
