// Package fixture is the deterministic fallback source used whenever the
// official registries are not configured. It simulates realistic latency so
// timing-sensitive behaviour stays observable in development, and it is
// never listed as a provenance source in responses.
package fixture

import (
	"context"
	"time"

	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
)

// Source serves canned vehicle records and inspection histories keyed by
// canonical plate.
type Source struct {
	vehicles  map[string]vehicle.VehicleRecord
	histories map[string][]vehicle.MOTTest
	latency   time.Duration
}

func New() *Source {
	return &Source{
		vehicles:  defaultVehicles(),
		histories: defaultHistories(),
		latency:   120 * time.Millisecond,
	}
}

// LookupVehicle resolves a canned vehicle record.
func (s *Source) LookupVehicle(ctx context.Context, canonical string) (*vehicle.VehicleRecord, fetch.Status, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	record, ok := s.vehicles[canonical]
	if !ok {
		return nil, fetch.StatusNotFound, nil
	}
	return &record, fetch.StatusFound, nil
}

// LookupHistory resolves a canned inspection history.
func (s *Source) LookupHistory(ctx context.Context, canonical string) ([]vehicle.MOTTest, fetch.Status, error) {
	if err := s.sleep(ctx); err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	history, ok := s.histories[canonical]
	if !ok {
		return nil, fetch.StatusNotFound, nil
	}
	return history, fetch.StatusFound, nil
}

func (s *Source) sleep(ctx context.Context) error {
	if s.latency == 0 {
		return nil
	}
	timer := time.NewTimer(s.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func defaultVehicles() map[string]vehicle.VehicleRecord {
	return map[string]vehicle.VehicleRecord{
		"AB12CDE": {
			Make:              "VOLKSWAGEN",
			Model:             "GOLF",
			Colour:            "Silver",
			FuelType:          "Petrol",
			EngineCapacity:    1984,
			CO2Emissions:      139,
			YearOfManufacture: 2012,
			TaxStatus:         vehicle.TaxStatusTaxed,
			TaxDueDate:        "2026-01-01",
			MOTStatus:         vehicle.MOTStatusValid,
			MOTExpiryDate:     "2026-03-14",
			Wheelplan:         "2 AXLE RIGID BODY",
		},
		"BD19XYZ": {
			Make:              "FORD",
			Model:             "FIESTA",
			Colour:            "Blue",
			FuelType:          "Petrol",
			EngineCapacity:    998,
			YearOfManufacture: 2019,
			TaxStatus:         vehicle.TaxStatusSORN,
			MOTStatus:         vehicle.MOTStatusValid,
			MOTExpiryDate:     "2026-06-02",
		},
		"EL70CTR": {
			Make:              "TESLA",
			Model:             "MODEL 3",
			Colour:            "White",
			FuelType:          "Electricity",
			EngineCapacity:    0,
			YearOfManufacture: 2020,
			TaxStatus:         vehicle.TaxStatusTaxed,
			MOTStatus:         vehicle.MOTStatusValid,
			MOTExpiryDate:     "2026-09-30",
		},
	}
}

func defaultHistories() map[string][]vehicle.MOTTest {
	return map[string][]vehicle.MOTTest{
		"AB12CDE": {
			{
				CompletedDate: time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC),
				Result:        vehicle.TestResultPassed,
				ExpiryDate:    "2026-03-14",
				Odometer:      64211,
				OdometerUnit:  "mi",
				TestNumber:    "9871 2345 6789",
				Defects: []vehicle.Defect{
					{Text: "Nearside front tyre worn close to legal limit", Kind: vehicle.DefectAdvisory},
				},
			},
			{
				CompletedDate: time.Date(2024, 3, 2, 9, 15, 0, 0, time.UTC),
				Result:        vehicle.TestResultFailed,
				Odometer:      58102,
				OdometerUnit:  "mi",
				TestNumber:    "5544 1122 3344",
				Defects: []vehicle.Defect{
					{Text: "Offside headlamp aim too high", Kind: vehicle.DefectMajor},
					{Text: "Brake pipe corroded", Kind: vehicle.DefectDangerous, Dangerous: true},
				},
			},
		},
		"BD19XYZ": {
			{
				CompletedDate: time.Date(2025, 6, 2, 14, 0, 0, 0, time.UTC),
				Result:        vehicle.TestResultPassed,
				ExpiryDate:    "2026-06-02",
				Odometer:      23450,
				OdometerUnit:  "mi",
				TestNumber:    "1234 5678 9012",
			},
		},
	}
}
