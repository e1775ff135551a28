package vehicle

import (
	"time"
)

// Jurisdiction identifies which authority's data sources apply to a plate.
type Jurisdiction string

const (
	JurisdictionUK        Jurisdiction = "UK"
	JurisdictionIsleOfMan Jurisdiction = "ISLE_OF_MAN"
)

// TaxStatus is the canonical tax state of a vehicle.
type TaxStatus string

const (
	TaxStatusTaxed              TaxStatus = "Taxed"
	TaxStatusSORN               TaxStatus = "SORN"
	TaxStatusUntaxed            TaxStatus = "Untaxed"
	TaxStatusNotTaxedForRoadUse TaxStatus = "Not Taxed for on Road Use"
)

// MOTStatus is the canonical MOT state of a vehicle.
type MOTStatus string

const (
	MOTStatusValid         MOTStatus = "Valid"
	MOTStatusNoDetailsHeld MOTStatus = "No details held"
	MOTStatusNotValid      MOTStatus = "Not valid"
)

// VehicleRecord holds the canonical vehicle facts produced by exactly one
// authoritative source per request.
type VehicleRecord struct {
	Make                     string    `json:"make"`
	Model                    string    `json:"model,omitempty"`
	Colour                   string    `json:"colour,omitempty"`
	FuelType                 string    `json:"fuel_type,omitempty"`
	EngineCapacity           int       `json:"engine_capacity"`
	CO2Emissions             int       `json:"co2_emissions,omitempty"`
	YearOfManufacture        int       `json:"year_of_manufacture"`
	TaxStatus                TaxStatus `json:"tax_status"`
	TaxDueDate               string    `json:"tax_due_date,omitempty"`
	MOTStatus                MOTStatus `json:"mot_status"`
	MOTExpiryDate            string    `json:"mot_expiry_date,omitempty"`
	DateOfLastV5CIssued      string    `json:"date_of_last_v5c_issued,omitempty"`
	Wheelplan                string    `json:"wheelplan,omitempty"`
	MonthOfFirstRegistration string    `json:"month_of_first_registration,omitempty"`
	EuroStatus               string    `json:"euro_status,omitempty"`
	MarkedForExport          bool      `json:"marked_for_export,omitempty"`
}

// TestResult is the outcome of a single MOT test.
type TestResult string

const (
	TestResultPassed TestResult = "PASSED"
	TestResultFailed TestResult = "FAILED"
)

// DefectKind classifies a defect raised during an MOT test.
type DefectKind string

const (
	DefectAdvisory            DefectKind = "ADVISORY"
	DefectMinor               DefectKind = "MINOR"
	DefectMajor               DefectKind = "MAJOR"
	DefectDangerous           DefectKind = "DANGEROUS"
	DefectFail                DefectKind = "FAIL"
	DefectPassedRiskStatement DefectKind = "PRS"
)

// Defect is a single item recorded against an MOT test.
type Defect struct {
	Text      string     `json:"text"`
	Kind      DefectKind `json:"kind"`
	Dangerous bool       `json:"dangerous"`
}

// MOTTest is one entry in a vehicle's inspection history.
type MOTTest struct {
	CompletedDate time.Time  `json:"completed_date"`
	Result        TestResult `json:"result"`
	ExpiryDate    string     `json:"expiry_date,omitempty"`
	Odometer      int        `json:"odometer,omitempty"`
	OdometerUnit  string     `json:"odometer_unit,omitempty"`
	TestNumber    string     `json:"test_number"`
	Defects       []Defect   `json:"defects,omitempty"`
}

// Extras carries low-confidence supplementary facts recovered by scraping.
// Every free-text field here has passed the sanitizer.
type Extras struct {
	Power              string   `json:"power,omitempty"`
	TopSpeed           string   `json:"top_speed,omitempty"`
	ZeroToSixty        string   `json:"zero_to_sixty,omitempty"`
	InsuranceGroup     string   `json:"insurance_group,omitempty"`
	ULEZCompliant      string   `json:"ulez_compliant,omitempty"`
	CAZCompliant       string   `json:"caz_compliant,omitempty"`
	LastSeenPrice      string   `json:"last_seen_price,omitempty"`
	LastSeenMileage    string   `json:"last_seen_mileage,omitempty"`
	BodyStyle          string   `json:"body_style,omitempty"`
	RegisteredLocation string   `json:"registered_location,omitempty"`
	PreviousUKPlate    string   `json:"previous_uk_plate,omitempty"`
	IoMFirstRegistered string   `json:"iom_first_registered,omitempty"`
	ModelVariant       string   `json:"model_variant,omitempty"`
	Category           string   `json:"category,omitempty"`
	Sources            []string `json:"sources,omitempty"`
}

// IsEmpty reports whether no supplementary field is populated.
func (e *Extras) IsEmpty() bool {
	if e == nil {
		return true
	}
	return e.Power == "" && e.TopSpeed == "" && e.ZeroToSixty == "" &&
		e.InsuranceGroup == "" && e.ULEZCompliant == "" && e.CAZCompliant == "" &&
		e.LastSeenPrice == "" && e.LastSeenMileage == "" && e.BodyStyle == "" &&
		e.RegisteredLocation == "" && e.PreviousUKPlate == "" &&
		e.IoMFirstRegistered == "" && e.ModelVariant == "" && e.Category == ""
}

// InsuranceState is the tri-state outcome of an insurance database check.
type InsuranceState string

const (
	InsuranceStateInsured    InsuranceState = "INSURED"
	InsuranceStateNotInsured InsuranceState = "NOT_INSURED"
	InsuranceStateUnknown    InsuranceState = "UNKNOWN"
)

// InsuranceStatus is the result of the independent insurance side-channel.
type InsuranceStatus struct {
	State     InsuranceState `json:"state"`
	Message   string         `json:"message,omitempty"`
	CheckedAt time.Time      `json:"checked_at"`
}

// RawSpecRecord is the unsanitized field map extracted from a third-party
// specification page. Values must pass the sanitizer before exposure.
type RawSpecRecord struct {
	Make               string
	Model              string
	Colour             string
	FuelType           string
	EngineSize         string
	Year               string
	TaxStatus          string
	TaxDue             string
	MOTStatus          string
	MOTExpiry          string
	Power              string
	TopSpeed           string
	ZeroToSixty        string
	InsuranceGroup     string
	ULEZ               string
	CAZ                string
	Price              string
	Mileage            string
	BodyStyle          string
	RegisteredLocation string
	Source             string
}

// IsEmpty reports whether extraction found nothing at all. Every extracted
// field counts; only the provenance name is ignored.
func (r *RawSpecRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	clone := *r
	clone.Source = ""
	return clone == RawSpecRecord{}
}

// RawIoMRecord is the unsanitized field map extracted from the Isle of Man
// government registry result page.
type RawIoMRecord struct {
	Make            string
	Model           string
	Variant         string
	Colour          string
	Category        string
	FuelType        string
	EngineSize      string
	FirstRegistered string
	TaxStatus       string
	PreviousUKReg   string
	// Diagnostic describes why extraction came back empty. Informational only.
	Diagnostic string
}

// AggregateResult is the unified response for one lookup. Exactly one of
// "at least one populated data field" or Error holds.
type AggregateResult struct {
	Registration string         `json:"registration"`
	Jurisdiction Jurisdiction   `json:"jurisdiction"`
	Vehicle      *VehicleRecord `json:"vehicle,omitempty"`
	MOTHistory   []MOTTest      `json:"mot_history,omitempty"`
	Extras       *Extras        `json:"extras,omitempty"`
	UKVehicle    *VehicleRecord `json:"uk_vehicle,omitempty"`
	Error        string         `json:"error,omitempty"`
}
