// Package iomreg queries the Isle of Man government vehicle registry. The
// registry fronts its search with a session handshake: the search page must
// be visited first to obtain an anti-forgery token and session cookies, then
// the query is POSTed carrying that state. A failure anywhere in the
// handshake is Unavailable; a served result page is used even when only some
// of its fields could be extracted.
package iomreg

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/publicsuffix"

	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
	"vehicle-info-service/internal/fetch/htmlfield"
	"vehicle-info-service/internal/plate"
)

// SourceName is the provenance name attached to extras built from this
// registry.
const SourceName = "isle of man vehicle registry"

const (
	tokenField        = "__RequestVerificationToken"
	registrationField = "registrationMark"
	maxBodyBytes      = 1 << 20
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Archiver stores result pages that defeated extraction, for offline
// diagnosis.
type Archiver interface {
	ArchiveHTML(ctx context.Context, source, plate string, body []byte) (string, error)
}

type Client struct {
	baseURL string
	timeout time.Duration
	cache   *cache.Store[vehicle.RawIoMRecord]
	archive Archiver
	log     zerolog.Logger
}

func New(cfg Config, store *cache.Store[vehicle.RawIoMRecord], archive Archiver, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: timeout,
		cache:   store,
		archive: archive,
		log:     log,
	}
}

// Lookup runs the session-then-query protocol for an Isle of Man plate.
func (c *Client) Lookup(ctx context.Context, canonical string) (*vehicle.RawIoMRecord, fetch.Status, error) {
	if c.baseURL == "" {
		return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
	}

	if cached, negative, ok := c.cache.Get(canonical); ok {
		if negative {
			return nil, fetch.StatusNotFound, nil
		}
		record := cached
		return &record, fetch.StatusFound, nil
	}

	// Fresh session per query; results are cached for a day so the
	// handshake cost is paid rarely.
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	session := &http.Client{Jar: jar, Timeout: c.timeout}

	token, err := c.acquireSession(ctx, session)
	if err != nil {
		return nil, fetch.StatusUnavailable, fmt.Errorf("session handshake: %w", err)
	}

	body, status, err := c.submitQuery(ctx, session, token, canonical)
	if err != nil {
		return nil, status, err
	}
	if status == fetch.StatusNotFound {
		c.cache.PutNegative(canonical)
		return nil, fetch.StatusNotFound, nil
	}

	doc, err := htmlfield.Parse(body)
	if err != nil {
		return nil, fetch.StatusUnavailable, fmt.Errorf("parse result page: %w", err)
	}

	record := extractRecord(doc)
	if record.Make == "" {
		record.Diagnostic = "result page served but no make field extracted"
		c.archivePage(ctx, canonical, body)
	}

	c.cache.Put(canonical, record)
	return &record, fetch.StatusFound, nil
}

// acquireSession visits the search page and lifts the anti-forgery token.
// The visit may bounce through a short redirect chain; the default client
// follows it with the jar collecting cookies along the way.
func (c *Client) acquireSession(ctx context.Context, session *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := session.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	doc, err := htmlfield.Parse(body)
	if err != nil {
		return "", err
	}

	token := doc.FormValue(tokenField)
	if token == "" {
		return "", fmt.Errorf("no %s field on search page", tokenField)
	}
	return token, nil
}

func (c *Client) submitQuery(ctx context.Context, session *http.Client, token, canonical string) ([]byte, fetch.Status, error) {
	form := url.Values{}
	form.Set(tokenField, token)
	form.Set(registrationField, plate.FormatForRegistryQuery(canonical))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := session.Do(req)
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fetch.StatusNotFound, nil
	case resp.StatusCode != http.StatusOK:
		return nil, fetch.StatusUnavailable, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}

	if noResults(body) {
		return nil, fetch.StatusNotFound, nil
	}
	return body, fetch.StatusFound, nil
}

func noResults(body []byte) bool {
	lower := strings.ToLower(string(body))
	return strings.Contains(lower, "no vehicle found") ||
		strings.Contains(lower, "no results were found")
}

// extractRecord lifts whatever labelled fields the result page carries. A
// partial record is deliberately kept: the aggregator only rejects the
// record when make, the single essential field, is absent.
func extractRecord(doc *htmlfield.Document) vehicle.RawIoMRecord {
	return vehicle.RawIoMRecord{
		Make:            doc.Field("Make", "Manufacturer"),
		Model:           doc.Field("Model"),
		Variant:         doc.Field("Variant", "Model Variant"),
		Colour:          doc.Field("Colour", "Color"),
		Category:        doc.Field("Category", "Vehicle Category"),
		FuelType:        doc.Field("Fuel Type", "Fuel"),
		EngineSize:      doc.Field("Engine Size", "Engine Capacity", "Cylinder Capacity"),
		FirstRegistered: doc.Field("First Registered", "Date of First Registration"),
		TaxStatus:       doc.Field("Vehicle Licence", "Tax Status", "Licence Status"),
		PreviousUKReg:   doc.Field("Previous Registration", "Previous UK Registration"),
	}
}

func (c *Client) archivePage(ctx context.Context, canonical string, body []byte) {
	if c.archive == nil {
		return
	}
	if _, err := c.archive.ArchiveHTML(ctx, SourceName, canonical, body); err != nil {
		c.log.Warn().Err(err).Str("plate", canonical).Msg("failed to archive registry page")
	}
}
