package plate

import (
	"regexp"
	"strings"

	"vehicle-info-service/internal/domain/vehicle"
)

// Normalize returns the canonical form of a registration: uppercase with all
// whitespace removed. Inputs shorter than 2 characters after stripping are
// invalid and yield the empty string; callers must not issue lookups for them.
func Normalize(raw string) string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(raw), ""))
	if len(normalized) < 2 {
		return ""
	}
	return normalized
}

// Display returns the spaced, uppercased form of a registration with runs of
// whitespace collapsed.
func Display(raw string) string {
	return strings.ToUpper(strings.Join(strings.Fields(raw), " "))
}

// manxRules is the ordered Isle of Man rule set. First match wins; each rule
// is tried against both the space-normalized and the fully-stripped form of
// the input because a pattern may match one representation but not the other.
var manxRules = []struct {
	name string
	re   *regexp.Regexp
}{
	{"classic MN mark", regexp.MustCompile(`^[A-Z]{0,2}MN ?\d{1,4} ?[A-Z]?$`)},
	{"MAN/MANX cherished mark", regexp.MustCompile(`^MANX? ?\d{1,4} ?[A-Z]?$`)},
	{"modern numeric MN mark", regexp.MustCompile(`^\d{1,3}-?MN-?\d{1,3}$`)},
	{"MN suffix mark", regexp.MustCompile(`^\d{1,4} ?MN$`)},
}

// Classify determines the jurisdiction of a raw registration. It is pure and
// deterministic: every input maps to exactly one jurisdiction, defaulting to
// UK when no Isle of Man rule matches.
func Classify(raw string) vehicle.Jurisdiction {
	spaced := Display(raw)
	stripped := strings.ReplaceAll(spaced, " ", "")
	for _, rule := range manxRules {
		if rule.re.MatchString(spaced) || rule.re.MatchString(stripped) {
			return vehicle.JurisdictionIsleOfMan
		}
	}
	return vehicle.JurisdictionUK
}

var (
	manxNumericForm = regexp.MustCompile(`^(\d{1,3})MN(\d{1,3})$`)
	manxLetterForm  = regexp.MustCompile(`^([A-Z]{1,3})(\d{1,4})([A-Z]?)$`)
)

// FormatForRegistryQuery renders an Isle of Man registration the way the
// registry's search form expects it: LETTERS-DIGITS[-SUFFIX], with the modern
// numeric format rendered DIGITS-MN-DIGITS. Unrecognized shapes are returned
// cleaned but unformatted; downstream treats them as best-effort.
func FormatForRegistryQuery(canonical string) string {
	return formatManx(canonical, "-")
}

// FormatForDisplay is the space-separated inverse of FormatForRegistryQuery.
func FormatForDisplay(canonical string) string {
	return formatManx(canonical, " ")
}

func formatManx(canonical, sep string) string {
	cleaned := strings.ToUpper(strings.ReplaceAll(strings.Join(strings.Fields(canonical), ""), "-", ""))
	if m := manxNumericForm.FindStringSubmatch(cleaned); m != nil {
		return m[1] + sep + "MN" + sep + m[2]
	}
	if m := manxLetterForm.FindStringSubmatch(cleaned); m != nil {
		out := m[1] + sep + m[2]
		if m[3] != "" {
			out += sep + m[3]
		}
		return out
	}
	return cleaned
}
