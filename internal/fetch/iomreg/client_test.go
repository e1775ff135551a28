package iomreg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
)

const searchPage = `<html><body>
<form method="post">
<input name="__RequestVerificationToken" type="hidden" value="tok-123"/>
<input name="registrationMark" type="text"/>
</form>
</body></html>`

const resultPage = `<html><body>
<table>
<tr><th>Make</th><td>ROVER</td></tr>
<tr><th>Model</th><td>MINI</td></tr>
<tr><th>Colour</th><td>Red</td></tr>
<tr><th>Engine Size</th><td>1275 cc</td></tr>
<tr><th>First Registered</th><td>12 May 1998</td></tr>
<tr><th>Vehicle Licence</th><td>Valid until 31 Dec 2026</td></tr>
<tr><th>Previous Registration</th><td>AB12 CDE</td></tr>
</table>
</body></html>`

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	store := cache.New[vehicle.RawIoMRecord](time.Hour)
	return New(Config{BaseURL: baseURL, Timeout: 2 * time.Second}, store, nil, zerolog.Nop())
}

func TestLookupRunsHandshakeThenQuery(t *testing.T) {
	var sawToken string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(searchPage))
		case http.MethodPost:
			sawToken = r.FormValue("__RequestVerificationToken")
			if r.FormValue("registrationMark") == "" {
				t.Error("POST carried no registration mark")
			}
			w.Write([]byte(resultPage))
		}
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	record, status, err := client.Lookup(context.Background(), "PMN147E")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if status != fetch.StatusFound {
		t.Fatalf("status = %v, want found", status)
	}
	if sawToken != "tok-123" {
		t.Errorf("POST token = %q, want %q", sawToken, "tok-123")
	}
	if record.Make != "ROVER" || record.Model != "MINI" {
		t.Errorf("record = %+v, want ROVER MINI", record)
	}
	if record.EngineSize != "1275 cc" {
		t.Errorf("EngineSize = %q, want %q", record.EngineSize, "1275 cc")
	}
	if record.PreviousUKReg != "AB12 CDE" {
		t.Errorf("PreviousUKReg = %q, want %q", record.PreviousUKReg, "AB12 CDE")
	}
}

func TestLookupFailedHandshakeIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Search page without the anti-forgery field.
		w.Write([]byte(`<html><body><p>maintenance</p></body></html>`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, status, err := client.Lookup(context.Background(), "PMN147E")
	if status != fetch.StatusUnavailable {
		t.Fatalf("status = %v, want unavailable", status)
	}
	if err == nil {
		t.Fatal("expected an error explaining the unavailability")
	}
}

func TestLookupNoResultsIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(searchPage))
			return
		}
		w.Write([]byte(`<html><body><p>No results were found for your search.</p></body></html>`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, status, err := client.Lookup(context.Background(), "XMN999")
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if status != fetch.StatusNotFound {
		t.Fatalf("status = %v, want not_found", status)
	}

	// Negative result is cached; a second lookup must not touch the server.
	srv.Close()
	_, status, err = client.Lookup(context.Background(), "XMN999")
	if err != nil || status != fetch.StatusNotFound {
		t.Fatalf("cached negative lookup = (%v, %v), want (not_found, nil)", status, err)
	}
}

func TestLookupPartialRecordKept(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(searchPage))
			return
		}
		w.Write([]byte(`<html><body><table>
<tr><th>Model</th><td>MINI</td></tr>
</table></body></html>`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	record, status, err := client.Lookup(context.Background(), "PMN147E")
	if err != nil || status != fetch.StatusFound {
		t.Fatalf("Lookup = (%v, %v), want (found, nil)", status, err)
	}
	if record.Model != "MINI" {
		t.Errorf("Model = %q, want MINI", record.Model)
	}
	if record.Diagnostic == "" {
		t.Error("record without a make should carry a diagnostic")
	}
}
