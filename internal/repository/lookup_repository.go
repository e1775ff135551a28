// Package repository persists the lookup audit trail: which registrations
// were queried, what each query resolved to, and a JSON snapshot of the
// response for later inspection and export.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"vehicle-info-service/internal/aggregator"
	"vehicle-info-service/internal/domain/vehicle"
)

type LookupRepository struct {
	db *gorm.DB
}

func NewLookupRepository(db *gorm.DB) *LookupRepository {
	return &LookupRepository{db: db}
}

func (Plate) TableName() string {
	return "lookup_plates"
}

func (Lookup) TableName() string {
	return "vehicle_lookups"
}

type Plate struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	Registration string    `gorm:"not null"`
	Canonical    string    `gorm:"not null;uniqueIndex"`
	Jurisdiction string    `gorm:"not null"`
	CreatedAt    time.Time
}

type Lookup struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()"`
	PlateID      *uuid.UUID `gorm:"type:uuid"`
	Canonical    string     `gorm:"not null"`
	Jurisdiction string     `gorm:"not null"`
	Outcome      string     `gorm:"not null"`
	Sources      *string
	Result       datatypes.JSON `gorm:"type:jsonb"`
	DurationMS   int64
	CreatedAt    time.Time
}

// Lookup outcome classes stored in the audit trail.
const (
	OutcomeFound        = "FOUND"
	OutcomeNotFound     = "NOT_FOUND"
	OutcomeNoUsableData = "NO_USABLE_DATA"
	OutcomeUnavailable  = "UNAVAILABLE"
	OutcomeRejected     = "REJECTED"
)

func (r *LookupRepository) GetOrCreatePlate(ctx context.Context, canonical, display, jurisdiction string) (uuid.UUID, error) {
	var plate Plate
	err := r.db.WithContext(ctx).Where("canonical = ?", canonical).First(&plate).Error
	if err == nil {
		return plate.ID, nil
	}
	if err != gorm.ErrRecordNotFound {
		return uuid.Nil, err
	}

	plate = Plate{
		ID:           uuid.New(),
		Registration: display,
		Canonical:    canonical,
		Jurisdiction: jurisdiction,
		CreatedAt:    time.Now(),
	}
	if err := r.db.WithContext(ctx).Create(&plate).Error; err != nil {
		return uuid.Nil, fmt.Errorf("failed to create plate: %w", err)
	}
	return plate.ID, nil
}

// RecordLookup writes one audit entry with a JSON snapshot of the response.
func (r *LookupRepository) RecordLookup(ctx context.Context, plateID *uuid.UUID, canonical string, result *vehicle.AggregateResult, duration time.Duration) error {
	entry := Lookup{
		ID:           uuid.New(),
		PlateID:      plateID,
		Canonical:    canonical,
		Jurisdiction: string(result.Jurisdiction),
		Outcome:      classifyOutcome(result),
		DurationMS:   duration.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	if result.Extras != nil && len(result.Extras.Sources) > 0 {
		joined, err := json.Marshal(result.Extras.Sources)
		if err == nil {
			s := string(joined)
			entry.Sources = &s
		}
	}

	snapshot, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal lookup snapshot: %w", err)
	}
	entry.Result = datatypes.JSON(snapshot)

	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to record lookup: %w", err)
	}
	return nil
}

func classifyOutcome(result *vehicle.AggregateResult) string {
	switch result.Error {
	case "":
		return OutcomeFound
	case aggregator.MsgNotFound:
		return OutcomeNotFound
	case aggregator.MsgNoUsableData:
		return OutcomeNoUsableData
	case aggregator.MsgInvalidRegistration:
		return OutcomeRejected
	default:
		return OutcomeUnavailable
	}
}

func (r *LookupRepository) FindLookups(ctx context.Context, canonical *string, from, to *time.Time, limit, offset int) ([]Lookup, error) {
	query := r.db.WithContext(ctx).Model(&Lookup{})

	if canonical != nil {
		query = query.Where("canonical = ?", *canonical)
	}
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	query = query.Order("created_at DESC")

	if limit <= 0 || limit > 100 {
		limit = 100
	}
	query = query.Limit(limit)
	if offset > 0 {
		query = query.Offset(offset)
	}

	var lookups []Lookup
	err := query.Find(&lookups).Error
	return lookups, err
}

func (r *LookupRepository) GetLastLookupTimeForPlate(ctx context.Context, plateID uuid.UUID) (*time.Time, error) {
	var entry Lookup
	err := r.db.WithContext(ctx).
		Where("plate_id = ?", plateID).
		Order("created_at DESC").
		First(&entry).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &entry.CreatedAt, nil
}

// DeleteOldLookups prunes audit entries older than the given number of days.
func (r *LookupRepository) DeleteOldLookups(ctx context.Context, days int) (int64, error) {
	cutoffTime := time.Now().AddDate(0, 0, -days)
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoffTime).
		Delete(&Lookup{})

	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}
