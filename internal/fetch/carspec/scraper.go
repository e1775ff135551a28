// Package carspec scrapes a third-party vehicle specification site. Output
// is an unsanitized best-effort field map; the aggregator pushes every value
// through the sanitizer before exposing it.
package carspec

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
	"vehicle-info-service/internal/fetch/htmlfield"
)

// SourceName is the provenance name attached to extras built from this site.
const SourceName = "carspecs"

// maxBodyBytes caps how much of a scraped page is read.
const maxBodyBytes = 1 << 20

// Archiver stores raw pages that defeated extraction, for offline diagnosis.
type Archiver interface {
	ArchiveHTML(ctx context.Context, source, plate string, body []byte) (string, error)
}

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Scraper struct {
	httpClient *http.Client
	baseURL    string
	gate       *fetch.Gate
	cache      *cache.Store[vehicle.RawSpecRecord]
	archive    Archiver
	log        zerolog.Logger
}

func New(cfg Config, gate *fetch.Gate, store *cache.Store[vehicle.RawSpecRecord], archive Archiver, log zerolog.Logger) *Scraper {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &Scraper{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		gate:       gate,
		cache:      store,
		archive:    archive,
		log:        log,
	}
}

// Lookup fetches and extracts the specification page for a plate. The
// returned record may be partially or wholly empty; that is still a Found
// outcome as long as the page itself was served.
func (s *Scraper) Lookup(ctx context.Context, canonical string) (*vehicle.RawSpecRecord, fetch.Status, error) {
	if s.baseURL == "" {
		return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
	}

	if cached, negative, ok := s.cache.Get(canonical); ok {
		if negative {
			return nil, fetch.StatusNotFound, nil
		}
		record := cached
		return &record, fetch.StatusFound, nil
	}

	if err := s.gate.Wait(ctx); err != nil {
		return nil, fetch.StatusUnavailable, err
	}

	body, status, err := s.fetchPage(ctx, canonical)
	if err != nil {
		return nil, status, err
	}

	doc, err := htmlfield.Parse(body)
	if err != nil {
		return nil, fetch.StatusUnavailable, fmt.Errorf("parse page: %w", err)
	}

	record := extractSpec(doc)
	record.Source = SourceName

	if record.IsEmpty() {
		s.archivePage(ctx, canonical, body)
	}

	s.cache.Put(canonical, record)
	return &record, fetch.StatusFound, nil
}

func (s *Scraper) fetchPage(ctx context.Context, canonical string) ([]byte, fetch.Status, error) {
	url := fmt.Sprintf("%s/%s", s.baseURL, strings.ToLower(canonical))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	// Browser-shaped headers: the site serves a different (useless) page to
	// obvious bots.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		s.cache.PutNegative(canonical)
		return nil, fetch.StatusNotFound, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fetch.StatusUnavailable, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fetch.StatusUnavailable, fmt.Errorf("read body: %w", err)
	}
	return body, fetch.StatusFound, nil
}

func (s *Scraper) archivePage(ctx context.Context, canonical string, body []byte) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.ArchiveHTML(ctx, SourceName, canonical, body)
	if err != nil {
		s.log.Warn().Err(err).Str("plate", canonical).Msg("failed to archive scraped page")
		return
	}
	s.log.Info().Str("plate", canonical).Str("key", key).Msg("archived page with no extractable fields")
}

// extractSpec maps the page onto a raw record via labelled-field extraction.
// Label alternatives reflect the site's historical layouts.
func extractSpec(doc *htmlfield.Document) vehicle.RawSpecRecord {
	return vehicle.RawSpecRecord{
		Make:               doc.Field("Make", "Manufacturer"),
		Model:              doc.Field("Model"),
		Colour:             doc.Field("Colour", "Color"),
		FuelType:           doc.Field("Fuel Type", "Fuel"),
		EngineSize:         doc.Field("Engine Size", "Engine Capacity", "Engine"),
		Year:               doc.Field("Year", "Year of Manufacture", "First Registered"),
		TaxStatus:          doc.Field("Tax Status", "Road Tax"),
		TaxDue:             doc.Field("Tax Due", "Tax Expiry"),
		MOTStatus:          doc.Field("MOT Status", "MOT"),
		MOTExpiry:          doc.Field("MOT Expiry", "MOT Due"),
		Power:              doc.Field("Power", "BHP"),
		TopSpeed:           doc.Field("Top Speed"),
		ZeroToSixty:        doc.Field("0-60", "0 to 60", "0-62"),
		InsuranceGroup:     doc.Field("Insurance Group"),
		ULEZ:               doc.Field("ULEZ", "ULEZ Compliant"),
		CAZ:                doc.Field("CAZ", "Clean Air Zone"),
		Price:              doc.Field("Price", "Last Advertised Price"),
		Mileage:            doc.Field("Mileage", "Last Recorded Mileage"),
		BodyStyle:          doc.Field("Body Style", "Body Type"),
		RegisteredLocation: doc.Field("Registered Location", "Registered Near"),
	}
}
