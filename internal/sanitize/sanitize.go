// Package sanitize validates free-text values extracted from scraped pages.
// Scraped HTML is the least trustworthy source, so malformed values are
// rejected outright: a missing field beats corrupted text in a response.
package sanitize

import (
	"regexp"
	"strconv"
	"strings"
)

// placeholders are rejected on exact (case-insensitive) match.
var placeholders = map[string]struct{}{
	"n/a":           {},
	"-":             {},
	"unknown":       {},
	"not available": {},
	"none":          {},
}

// boilerplate phrases are rejected when contained anywhere in the value.
var boilerplate = []string{
	"click here",
	"learn more",
	"settlement figure",
	"company offers",
}

// Text cleans a scraped free-text value. It rejects empty or whitespace-only
// input, HTML fragment leakage, over-long values, and known placeholder or
// marketing phrases. The second return is false on rejection.
func Text(value string, maxLength int) (string, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return "", false
	}
	if strings.ContainsAny(cleaned, `<>"`) {
		return "", false
	}
	if len(cleaned) > maxLength {
		return "", false
	}
	lower := strings.ToLower(cleaned)
	if _, bad := placeholders[lower]; bad {
		return "", false
	}
	for _, phrase := range boilerplate {
		if strings.Contains(lower, phrase) {
			return "", false
		}
	}
	return cleaned, true
}

var (
	insuranceGroupForm = regexp.MustCompile(`^\d{1,2}[A-Z]?$`)
	embeddedNumber     = regexp.MustCompile(`\d{1,3}`)
)

// InsuranceGroup reduces a scraped insurance group to one or two digits with
// an optional trailing letter. Failing that it extracts an embedded number up
// to 50; anything else is rejected.
func InsuranceGroup(value string) (string, bool) {
	cleaned := strings.ToUpper(strings.TrimSpace(value))
	if insuranceGroupForm.MatchString(cleaned) {
		return cleaned, true
	}
	if m := embeddedNumber.FindString(cleaned); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n <= 50 {
			return m, true
		}
	}
	return "", false
}

var priceDigitComma = regexp.MustCompile(`\d,\d{3}`)

// Price accepts a scraped price only when it carries a currency symbol or a
// digit-comma sequence, contains no markup, and stays short after cleanup.
func Price(value string) (string, bool) {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" || strings.Contains(cleaned, "<") {
		return "", false
	}
	if len(cleaned) > 20 {
		return "", false
	}
	if !strings.ContainsAny(cleaned, "£$€") && !priceDigitComma.MatchString(cleaned) {
		return "", false
	}
	return cleaned, true
}

// ukPlateShapes are the five canonical UK registration shapes: current,
// prefix, suffix, and the two dateless orders.
var ukPlateShapes = []*regexp.Regexp{
	regexp.MustCompile(`^[A-Z]{2}\d{2}[A-Z]{3}$`),
	regexp.MustCompile(`^[A-Z]\d{1,3}[A-Z]{3}$`),
	regexp.MustCompile(`^[A-Z]{3}\d{1,3}[A-Z]$`),
	regexp.MustCompile(`^[A-Z]{1,3}\d{1,4}$`),
	regexp.MustCompile(`^\d{1,4}[A-Z]{1,3}$`),
}

// UKPlate validates a scraped cross-reference registration against the
// canonical UK shapes and reformats it with a display space after the fourth
// character. Rejections return false.
func UKPlate(value string) (string, bool) {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(value), ""))
	if cleaned == "" || cleaned == "N/A" {
		return "", false
	}
	for _, shape := range ukPlateShapes {
		if shape.MatchString(cleaned) {
			if len(cleaned) > 4 {
				return cleaned[:4] + " " + cleaned[4:], true
			}
			return cleaned, true
		}
	}
	return "", false
}
