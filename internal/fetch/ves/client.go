// Package ves queries the official vehicle enquiry service, the authoritative
// source for canonical vehicle facts on UK plates.
package ves

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
)

// SourceName identifies this fetcher in logs.
const SourceName = "vehicle enquiry service"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *cache.Store[vehicle.VehicleRecord]
	log        zerolog.Logger
}

func New(cfg Config, store *cache.Store[vehicle.VehicleRecord], log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		cache:      store,
		log:        log,
	}
}

// Configured reports whether the client has credentials. An unconfigured
// client is skipped in favour of the fixture source.
func (c *Client) Configured() bool {
	return c != nil && c.apiKey != "" && c.baseURL != ""
}

type enquiryRequest struct {
	RegistrationNumber string `json:"registrationNumber"`
}

type enquiryResponse struct {
	Make                     string `json:"make"`
	Colour                   string `json:"colour"`
	FuelType                 string `json:"fuelType"`
	EngineCapacity           int    `json:"engineCapacity"`
	CO2Emissions             int    `json:"co2Emissions"`
	YearOfManufacture        int    `json:"yearOfManufacture"`
	TaxStatus                string `json:"taxStatus"`
	TaxDueDate               string `json:"taxDueDate"`
	MOTStatus                string `json:"motStatus"`
	MOTExpiryDate            string `json:"motExpiryDate"`
	DateOfLastV5CIssued      string `json:"dateOfLastV5CIssued"`
	Wheelplan                string `json:"wheelplan"`
	MonthOfFirstRegistration string `json:"monthOfFirstRegistration"`
	EuroStatus               string `json:"euroStatus"`
	MarkedForExport          bool   `json:"markedForExport"`
}

// Lookup fetches the canonical record for a plate. A 404 from the registry is
// an affirmative NotFound; everything else that goes wrong is Unavailable
// with the cause returned for logging.
func (c *Client) Lookup(ctx context.Context, canonical string) (*vehicle.VehicleRecord, fetch.Status, error) {
	if !c.Configured() {
		return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
	}

	if cached, negative, ok := c.cache.Get(canonical); ok {
		if negative {
			return nil, fetch.StatusNotFound, nil
		}
		record := cached
		return &record, fetch.StatusFound, nil
	}

	body, err := json.Marshal(enquiryRequest{RegistrationNumber: canonical})
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vehicles", bytes.NewReader(body))
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		c.cache.PutNegative(canonical)
		return nil, fetch.StatusNotFound, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fetch.StatusUnavailable, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload enquiryResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fetch.StatusUnavailable, fmt.Errorf("decode response: %w", err)
	}

	record := payload.toRecord()
	c.cache.Put(canonical, record)
	c.log.Debug().Str("plate", canonical).Str("make", record.Make).Msg("vehicle enquiry hit")
	return &record, fetch.StatusFound, nil
}

func (r enquiryResponse) toRecord() vehicle.VehicleRecord {
	return vehicle.VehicleRecord{
		Make:                     r.Make,
		Colour:                   r.Colour,
		FuelType:                 r.FuelType,
		EngineCapacity:           r.EngineCapacity,
		CO2Emissions:             r.CO2Emissions,
		YearOfManufacture:        r.YearOfManufacture,
		TaxStatus:                mapTaxStatus(r.TaxStatus),
		TaxDueDate:               r.TaxDueDate,
		MOTStatus:                mapMOTStatus(r.MOTStatus),
		MOTExpiryDate:            r.MOTExpiryDate,
		DateOfLastV5CIssued:      r.DateOfLastV5CIssued,
		Wheelplan:                r.Wheelplan,
		MonthOfFirstRegistration: r.MonthOfFirstRegistration,
		EuroStatus:               r.EuroStatus,
		MarkedForExport:          r.MarkedForExport,
	}
}

// taxStatusRules maps the registry's tax vocabulary by exact match, first
// match wins, default Untaxed.
var taxStatusRules = []struct {
	text   string
	status vehicle.TaxStatus
}{
	{"taxed", vehicle.TaxStatusTaxed},
	{"sorn", vehicle.TaxStatusSORN},
	{"not taxed for on road use", vehicle.TaxStatusNotTaxedForRoadUse},
}

func mapTaxStatus(text string) vehicle.TaxStatus {
	lower := strings.ToLower(strings.TrimSpace(text))
	for _, rule := range taxStatusRules {
		if lower == rule.text {
			return rule.status
		}
	}
	return vehicle.TaxStatusUntaxed
}

func mapMOTStatus(text string) vehicle.MOTStatus {
	lower := strings.ToLower(strings.TrimSpace(text))
	switch {
	case lower == "valid":
		return vehicle.MOTStatusValid
	case strings.Contains(lower, "no details"):
		return vehicle.MOTStatusNoDetailsHeld
	default:
		return vehicle.MOTStatusNotValid
	}
}
