package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"vehicle-info-service/internal/aggregator"
	"vehicle-info-service/internal/domain/vehicle"
)

func newMockRepository(t *testing.T) (*LookupRepository, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	database, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 conn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}

	return NewLookupRepository(database), mock
}

func TestGetLastLookupTimeForPlate(t *testing.T) {
	repo, mock := newMockRepository(t)

	plateID := uuid.New()
	last := time.Date(2026, 8, 20, 9, 30, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "plate_id", "canonical", "created_at"}).
		AddRow(uuid.New().String(), plateID.String(), "AB12CDE", last)
	mock.ExpectQuery(`SELECT \* FROM "vehicle_lookups" WHERE plate_id`).
		WillReturnRows(rows)

	got, err := repo.GetLastLookupTimeForPlate(context.Background(), plateID)
	if err != nil {
		t.Fatalf("GetLastLookupTimeForPlate returned error: %v", err)
	}
	if got == nil || !got.Equal(last) {
		t.Errorf("last lookup time = %v, want %v", got, last)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestGetLastLookupTimeForPlateNoHistory(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "vehicle_lookups" WHERE plate_id`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "plate_id", "canonical", "created_at"}))

	got, err := repo.GetLastLookupTimeForPlate(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("GetLastLookupTimeForPlate returned error: %v", err)
	}
	if got != nil {
		t.Errorf("last lookup time = %v, want nil for a plate never looked up", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestDeleteOldLookups(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "vehicle_lookups" WHERE created_at <`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	deleted, err := repo.DeleteOldLookups(context.Background(), 90)
	if err != nil {
		t.Fatalf("DeleteOldLookups returned error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("deleted = %d, want 3", deleted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestClassifyOutcome(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"success", "", OutcomeFound},
		{"not found", aggregator.MsgNotFound, OutcomeNotFound},
		{"no usable data", aggregator.MsgNoUsableData, OutcomeNoUsableData},
		{"rejected input", aggregator.MsgInvalidRegistration, OutcomeRejected},
		{"sources down", aggregator.MsgSourcesUnavailable, OutcomeUnavailable},
		{"internal error", aggregator.MsgInternalError, OutcomeUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classifyOutcome(&vehicle.AggregateResult{Error: tt.message})
			if got != tt.want {
				t.Errorf("classifyOutcome(%q) = %q, want %q", tt.message, got, tt.want)
			}
		})
	}
}
