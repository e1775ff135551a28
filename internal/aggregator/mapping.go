package aggregator

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch/iomreg"
	"vehicle-info-service/internal/sanitize"
)

const maxFieldLength = 80

var (
	ccForm    = regexp.MustCompile(`(\d{3,4})\s*cc`)
	litreForm = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:litres?|liters?|l)\b`)
	yearForm  = regexp.MustCompile(`(?:19|20)\d{2}`)
)

// parseEngineCapacity reads scraped engine-size text into cubic centimetres.
// "1984 cc" and "2.0 litre" both resolve; a bare plausible cc number is
// accepted as-is. Anything else is zero.
func parseEngineCapacity(text string) int {
	lower := strings.ToLower(strings.TrimSpace(text))
	if m := ccForm.FindStringSubmatch(lower); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := litreForm.FindStringSubmatch(lower); m != nil {
		if f, err := strconv.ParseFloat(m[1], 64); err == nil {
			return int(math.Round(f * 1000))
		}
	}
	if n, err := strconv.Atoi(lower); err == nil && n >= 50 && n <= 9999 {
		return n
	}
	return 0
}

// parseYear extracts the first plausible four-digit year from free text.
func parseYear(text string) int {
	if m := yearForm.FindString(text); m != "" {
		n, _ := strconv.Atoi(m)
		return n
	}
	return 0
}

// scrapedTaxRules maps scraped tax text onto the canonical status. Order
// matters: "untaxed" and "not taxed" both contain "taxed" and must be
// tested first.
var scrapedTaxRules = []struct {
	substr string
	status vehicle.TaxStatus
}{
	{"sorn", vehicle.TaxStatusSORN},
	{"not taxed", vehicle.TaxStatusUntaxed},
	{"untaxed", vehicle.TaxStatusUntaxed},
	{"taxed", vehicle.TaxStatusTaxed},
}

func scrapedTaxStatus(text string) vehicle.TaxStatus {
	lower := strings.ToLower(text)
	for _, rule := range scrapedTaxRules {
		if strings.Contains(lower, rule.substr) {
			return rule.status
		}
	}
	return vehicle.TaxStatusUntaxed
}

// scrapedMOTRules follows the same ordering discipline: "not valid" and
// "expired" must be tested before "valid" and "expires".
var scrapedMOTRules = []struct {
	substr string
	status vehicle.MOTStatus
}{
	{"not valid", vehicle.MOTStatusNotValid},
	{"expired", vehicle.MOTStatusNotValid},
	{"no details", vehicle.MOTStatusNoDetailsHeld},
	{"valid", vehicle.MOTStatusValid},
	{"expires", vehicle.MOTStatusValid},
}

func scrapedMOTStatus(text string) vehicle.MOTStatus {
	lower := strings.ToLower(text)
	for _, rule := range scrapedMOTRules {
		if strings.Contains(lower, rule.substr) {
			return rule.status
		}
	}
	return vehicle.MOTStatusNoDetailsHeld
}

// manxTaxStatus reads the registry's licence wording. An active or valid
// licence is Taxed; a declared SORN stays SORN; everything else, including
// silence, is Untaxed.
func manxTaxStatus(text string) vehicle.TaxStatus {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "sorn"):
		return vehicle.TaxStatusSORN
	case strings.Contains(lower, "active"), strings.Contains(lower, "valid"):
		return vehicle.TaxStatusTaxed
	default:
		return vehicle.TaxStatusUntaxed
	}
}

// synthesizeFromScrape builds a vehicle record out of scraped text when no
// authoritative source produced one. Free-text fields pass the sanitizer;
// the caller guarantees the make survived it is worth synthesizing at all.
func synthesizeFromScrape(raw *vehicle.RawSpecRecord) *vehicle.VehicleRecord {
	record := &vehicle.VehicleRecord{
		EngineCapacity:    parseEngineCapacity(raw.EngineSize),
		YearOfManufacture: parseYear(raw.Year),
		TaxStatus:         scrapedTaxStatus(raw.TaxStatus),
		MOTStatus:         scrapedMOTStatus(raw.MOTStatus),
	}
	record.Make, _ = sanitize.Text(raw.Make, maxFieldLength)
	record.Model, _ = sanitize.Text(raw.Model, maxFieldLength)
	record.Colour, _ = sanitize.Text(raw.Colour, maxFieldLength)
	record.FuelType, _ = sanitize.Text(raw.FuelType, maxFieldLength)
	record.TaxDueDate, _ = sanitize.Text(raw.TaxDue, maxFieldLength)
	record.MOTExpiryDate, _ = sanitize.Text(raw.MOTExpiry, maxFieldLength)
	return record
}

// vehicleFromManx maps the registry record onto the canonical shape. The
// island runs no MOT regime the service can see, so MOT status is always
// "no details held".
func vehicleFromManx(record *vehicle.RawIoMRecord) *vehicle.VehicleRecord {
	out := &vehicle.VehicleRecord{
		EngineCapacity:    parseEngineCapacity(record.EngineSize),
		YearOfManufacture: parseYear(record.FirstRegistered),
		TaxStatus:         manxTaxStatus(record.TaxStatus),
		MOTStatus:         vehicle.MOTStatusNoDetailsHeld,
	}
	out.Make, _ = sanitize.Text(record.Make, maxFieldLength)
	out.Model, _ = sanitize.Text(record.Model, maxFieldLength)
	out.Colour, _ = sanitize.Text(record.Colour, maxFieldLength)
	out.FuelType, _ = sanitize.Text(record.FuelType, maxFieldLength)
	return out
}

// buildExtras pushes every scraped supplementary field through the
// sanitizer. Nil when nothing survives.
func buildExtras(raw *vehicle.RawSpecRecord) *vehicle.Extras {
	if raw == nil {
		return nil
	}
	extras := &vehicle.Extras{}
	extras.Power, _ = sanitize.Text(raw.Power, maxFieldLength)
	extras.TopSpeed, _ = sanitize.Text(raw.TopSpeed, maxFieldLength)
	extras.ZeroToSixty, _ = sanitize.Text(raw.ZeroToSixty, maxFieldLength)
	extras.InsuranceGroup, _ = sanitize.InsuranceGroup(raw.InsuranceGroup)
	extras.ULEZCompliant, _ = sanitize.Text(raw.ULEZ, maxFieldLength)
	extras.CAZCompliant, _ = sanitize.Text(raw.CAZ, maxFieldLength)
	extras.LastSeenPrice, _ = sanitize.Price(raw.Price)
	extras.LastSeenMileage, _ = sanitize.Text(raw.Mileage, maxFieldLength)
	extras.BodyStyle, _ = sanitize.Text(raw.BodyStyle, maxFieldLength)
	extras.RegisteredLocation, _ = sanitize.Text(raw.RegisteredLocation, maxFieldLength)
	if extras.IsEmpty() {
		return nil
	}
	if raw.Source != "" {
		extras.Sources = []string{raw.Source}
	}
	return extras
}

// buildManxExtras carries the registry-only facts that have no slot in the
// canonical record.
func buildManxExtras(record *vehicle.RawIoMRecord) *vehicle.Extras {
	extras := &vehicle.Extras{}
	extras.ModelVariant, _ = sanitize.Text(record.Variant, maxFieldLength)
	extras.Category, _ = sanitize.Text(record.Category, maxFieldLength)
	extras.IoMFirstRegistered, _ = sanitize.Text(record.FirstRegistered, maxFieldLength)
	extras.PreviousUKPlate, _ = sanitize.UKPlate(record.PreviousUKReg)
	if extras.IsEmpty() {
		return nil
	}
	extras.Sources = []string{iomreg.SourceName}
	return extras
}

// mergeExtras folds secondary findings under the primary's: any field the
// primary populated stays, and the primary's sources list leads.
func mergeExtras(primary, secondary *vehicle.Extras) *vehicle.Extras {
	if primary == nil {
		return secondary
	}
	if secondary == nil {
		return primary
	}
	merged := *primary
	keep := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	keep(&merged.Power, secondary.Power)
	keep(&merged.TopSpeed, secondary.TopSpeed)
	keep(&merged.ZeroToSixty, secondary.ZeroToSixty)
	keep(&merged.InsuranceGroup, secondary.InsuranceGroup)
	keep(&merged.ULEZCompliant, secondary.ULEZCompliant)
	keep(&merged.CAZCompliant, secondary.CAZCompliant)
	keep(&merged.LastSeenPrice, secondary.LastSeenPrice)
	keep(&merged.LastSeenMileage, secondary.LastSeenMileage)
	keep(&merged.BodyStyle, secondary.BodyStyle)
	keep(&merged.RegisteredLocation, secondary.RegisteredLocation)
	keep(&merged.PreviousUKPlate, secondary.PreviousUKPlate)
	keep(&merged.IoMFirstRegistered, secondary.IoMFirstRegistered)
	keep(&merged.ModelVariant, secondary.ModelVariant)
	keep(&merged.Category, secondary.Category)

	merged.Sources = append([]string{}, primary.Sources...)
	for _, source := range secondary.Sources {
		if !containsString(merged.Sources, source) {
			merged.Sources = append(merged.Sources, source)
		}
	}
	return &merged
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
