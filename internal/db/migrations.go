package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,

	// Every distinct registration the service has been asked about, keyed
	// by the canonical (whitespace-stripped, uppercased) form.
	`CREATE TABLE IF NOT EXISTS lookup_plates (
		id              UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		registration    TEXT NOT NULL,
		canonical       TEXT NOT NULL,
		jurisdiction    TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_lookup_plates_canonical ON lookup_plates(canonical);`,
	`CREATE INDEX IF NOT EXISTS idx_lookup_plates_registration ON lookup_plates(registration);`,

	// One row per lookup request, with the full response snapshot as JSONB.
	`CREATE TABLE IF NOT EXISTS vehicle_lookups (
		id              UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate_id        UUID REFERENCES lookup_plates(id) ON DELETE SET NULL,
		canonical       TEXT NOT NULL,
		jurisdiction    TEXT NOT NULL,
		outcome         TEXT NOT NULL,
		sources         TEXT,
		result          JSONB,
		duration_ms     BIGINT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_lookups_plate_id ON vehicle_lookups(plate_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_lookups_canonical ON vehicle_lookups(canonical);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_lookups_outcome ON vehicle_lookups(outcome);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_lookups_canonical_time ON vehicle_lookups(canonical, created_at DESC);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
