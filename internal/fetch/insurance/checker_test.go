package insurance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/domain/vehicle"
)

func newTestChecker(baseURL string) *Checker {
	store := cache.New[vehicle.InsuranceStatus](time.Hour)
	return New(Config{BaseURL: baseURL, Timeout: 2 * time.Second}, store, zerolog.Nop())
}

func TestCheckInsured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"insured": true}`))
	}))
	defer srv.Close()

	status := newTestChecker(srv.URL).Check(context.Background(), "AB12CDE")
	if status.State != vehicle.InsuranceStateInsured {
		t.Errorf("State = %q, want %q", status.State, vehicle.InsuranceStateInsured)
	}
	if status.CheckedAt.IsZero() {
		t.Error("CheckedAt not stamped")
	}
}

func TestCheckNotInsured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"insured": false, "message": "no active policy"}`))
	}))
	defer srv.Close()

	status := newTestChecker(srv.URL).Check(context.Background(), "BD19XYZ")
	if status.State != vehicle.InsuranceStateNotInsured {
		t.Errorf("State = %q, want %q", status.State, vehicle.InsuranceStateNotInsured)
	}
	if status.Message != "no active policy" {
		t.Errorf("Message = %q, want %q", status.Message, "no active policy")
	}
}

func TestCheckOutageIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	status := newTestChecker(srv.URL).Check(context.Background(), "AB12CDE")
	if status.State != vehicle.InsuranceStateUnknown {
		t.Errorf("State = %q, want %q", status.State, vehicle.InsuranceStateUnknown)
	}
	if status.Message == "" {
		t.Error("Unknown state should carry a message")
	}
}

func TestCheckUnconfiguredIsUnknown(t *testing.T) {
	status := newTestChecker("").Check(context.Background(), "AB12CDE")
	if status.State != vehicle.InsuranceStateUnknown {
		t.Errorf("State = %q, want %q", status.State, vehicle.InsuranceStateUnknown)
	}
}

func TestCheckAbsentRecordIsUnknown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "registration not recognised"}`))
	}))
	defer srv.Close()

	status := newTestChecker(srv.URL).Check(context.Background(), "ZZ99ZZZ")
	if status.State != vehicle.InsuranceStateUnknown {
		t.Errorf("State = %q, want %q", status.State, vehicle.InsuranceStateUnknown)
	}
	if status.Message != "registration not recognised" {
		t.Errorf("Message = %q, want server message", status.Message)
	}
}
