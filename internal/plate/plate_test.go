package plate

import (
	"testing"

	"vehicle-info-service/internal/domain/vehicle"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "with spaces",
			input:    "AB12 CDE",
			expected: "AB12CDE",
		},
		{
			name:     "lowercase",
			input:    "ab12cde",
			expected: "AB12CDE",
		},
		{
			name:     "leading and trailing spaces",
			input:    "  PMN 147 E  ",
			expected: "PMN147E",
		},
		{
			name:     "hyphens are kept",
			input:    "1-MN-00",
			expected: "1-MN-00",
		},
		{
			name:     "too short after stripping",
			input:    " A ",
			expected: "",
		},
		{
			name:     "whitespace only",
			input:    "   ",
			expected: "",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"AB12 CDE", "pmn 147 e", "1-MN-00", "MAN 123", "  bd19xyz "}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		expected vehicle.Jurisdiction
	}{
		{"PMN 147 E", vehicle.JurisdictionIsleOfMan},
		{"PMN147E", vehicle.JurisdictionIsleOfMan},
		{"MAN 123", vehicle.JurisdictionIsleOfMan},
		{"MANX 7", vehicle.JurisdictionIsleOfMan},
		{"1-MN-00", vehicle.JurisdictionIsleOfMan},
		{"123-MN-45", vehicle.JurisdictionIsleOfMan},
		{"1234 MN", vehicle.JurisdictionIsleOfMan},
		{"AB12 CDE", vehicle.JurisdictionUK},
		{"BD19XYZ", vehicle.JurisdictionUK},
		{"A123BCD", vehicle.JurisdictionUK},
		{"", vehicle.JurisdictionUK},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := Classify(tt.input)
			if result != tt.expected {
				t.Errorf("Classify(%q) = %q, want %q", tt.input, result, tt.expected)
			}
			// Deterministic: a second run yields the same jurisdiction.
			if again := Classify(tt.input); again != result {
				t.Errorf("Classify(%q) not deterministic: %q then %q", tt.input, result, again)
			}
		})
	}
}

func TestFormatForRegistryQuery(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PMN147E", "PMN-147-E"},
		{"PMN 147 E", "PMN-147-E"},
		{"MAN123", "MAN-123"},
		{"1-MN-00", "1-MN-00"},
		{"1MN00", "1-MN-00"},
		{"123MN45", "123-MN-45"},
		// Unrecognized shapes come back cleaned but unformatted.
		{"AB12CDE", "AB12CDE"},
		{"??", "??"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := FormatForRegistryQuery(tt.input)
			if result != tt.expected {
				t.Errorf("FormatForRegistryQuery(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatForDisplay(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PMN147E", "PMN 147 E"},
		{"MAN123", "MAN 123"},
		{"1MN00", "1 MN 00"},
		{"AB12CDE", "AB12CDE"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := FormatForDisplay(tt.input)
			if result != tt.expected {
				t.Errorf("FormatForDisplay(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
