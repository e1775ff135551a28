// Package insurance checks the motor insurance database for a plate. The
// check is an independent side channel: its result is served on its own
// endpoint and never merged into the aggregate vehicle response, so an
// outage here degrades to Unknown rather than failing a lookup.
package insurance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/domain/vehicle"
)

// SourceName identifies this checker in logs.
const SourceName = "motor insurance database"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type Checker struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *cache.Store[vehicle.InsuranceStatus]
	log        zerolog.Logger
}

func New(cfg Config, store *cache.Store[vehicle.InsuranceStatus], log zerolog.Logger) *Checker {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}
	return &Checker{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		cache:      store,
		log:        log,
	}
}

// Configured reports whether the checker has an endpoint to talk to.
func (c *Checker) Configured() bool {
	return c != nil && c.baseURL != ""
}

type checkResponse struct {
	Insured *bool  `json:"insured"`
	Message string `json:"message"`
}

// Check resolves the insurance state for a plate. All failure modes collapse
// to Unknown with a human-readable message; the caller never sees an error.
func (c *Checker) Check(ctx context.Context, canonical string) vehicle.InsuranceStatus {
	if !c.Configured() {
		return unknown("insurance source is not configured")
	}

	if cached, negative, ok := c.cache.Get(canonical); ok && !negative {
		return cached
	}

	status, err := c.query(ctx, canonical)
	if err != nil {
		c.log.Warn().Err(err).Str("plate", canonical).Msg("insurance check failed")
		return unknown("insurance status could not be determined at this time")
	}

	c.cache.Put(canonical, status)
	return status
}

func (c *Checker) query(ctx context.Context, canonical string) (vehicle.InsuranceStatus, error) {
	url := fmt.Sprintf("%s/v1/checks/%s", c.baseURL, canonical)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return vehicle.InsuranceStatus{}, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return vehicle.InsuranceStatus{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return vehicle.InsuranceStatus{}, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload checkResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return vehicle.InsuranceStatus{}, fmt.Errorf("decode response: %w", err)
	}

	// A response without the insured field is the database's own way of
	// saying it holds no answer for this plate.
	if payload.Insured == nil {
		return vehicle.InsuranceStatus{
			State:     vehicle.InsuranceStateUnknown,
			Message:   firstNonEmpty(payload.Message, "no insurance record held for this registration"),
			CheckedAt: time.Now().UTC(),
		}, nil
	}

	state := vehicle.InsuranceStateNotInsured
	if *payload.Insured {
		state = vehicle.InsuranceStateInsured
	}
	return vehicle.InsuranceStatus{
		State:     state,
		Message:   payload.Message,
		CheckedAt: time.Now().UTC(),
	}, nil
}

func unknown(message string) vehicle.InsuranceStatus {
	return vehicle.InsuranceStatus{
		State:     vehicle.InsuranceStateUnknown,
		Message:   message,
		CheckedAt: time.Now().UTC(),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
