// Package mot queries the official MOT history trade API. Token exchange is
// OAuth2 client credentials; the token is cached process-wide and refreshed
// transparently by the oauth2 transport.
package mot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2/clientcredentials"

	"vehicle-info-service/internal/cache"
	"vehicle-info-service/internal/domain/vehicle"
	"vehicle-info-service/internal/fetch"
)

// SourceName identifies this fetcher in logs.
const SourceName = "mot history api"

type Config struct {
	BaseURL      string
	APIKey       string
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scope        string
	Timeout      time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *cache.Store[[]vehicle.MOTTest]
	log        zerolog.Logger
	configured bool
}

func New(cfg Config, store *cache.Store[[]vehicle.MOTTest], log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 8 * time.Second
	}

	configured := cfg.ClientID != "" && cfg.ClientSecret != "" && cfg.TokenURL != "" && cfg.BaseURL != ""

	var httpClient *http.Client
	if configured {
		creds := clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.TokenURL,
			Scopes:       []string{cfg.Scope},
		}
		httpClient = creds.Client(context.Background())
		httpClient.Timeout = timeout
	} else {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		cache:      store,
		log:        log,
		configured: configured,
	}
}

// Configured reports whether the client holds working credentials.
func (c *Client) Configured() bool {
	return c != nil && c.configured
}

type historyResponse struct {
	Registration string    `json:"registration"`
	MOTTests     []apiTest `json:"motTests"`
}

type apiTest struct {
	CompletedDate      string      `json:"completedDate"`
	TestResult         string      `json:"testResult"`
	ExpiryDate         string      `json:"expiryDate"`
	OdometerValue      string      `json:"odometerValue"`
	OdometerUnit       string      `json:"odometerUnit"`
	OdometerResultType string      `json:"odometerResultType"`
	MOTTestNumber      string      `json:"motTestNumber"`
	Defects            []apiDefect `json:"defects"`
}

type apiDefect struct {
	Text      string `json:"text"`
	Type      string `json:"type"`
	Dangerous bool   `json:"dangerous"`
}

// Lookup fetches the inspection history for a plate, sorted most recent
// first. A 404 is an affirmative NotFound.
func (c *Client) Lookup(ctx context.Context, canonical string) ([]vehicle.MOTTest, fetch.Status, error) {
	if !c.Configured() {
		return nil, fetch.StatusUnavailable, fetch.ErrNotConfigured
	}

	if cached, negative, ok := c.cache.Get(canonical); ok {
		if negative {
			return nil, fetch.StatusNotFound, nil
		}
		return cached, fetch.StatusFound, nil
	}

	url := fmt.Sprintf("%s/v1/trade/vehicles/registration/%s", c.baseURL, canonical)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fetch.StatusUnavailable, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

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

	var payload historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fetch.StatusUnavailable, fmt.Errorf("decode response: %w", err)
	}

	tests := mapTests(payload.MOTTests)
	c.cache.Put(canonical, tests)
	c.log.Debug().Str("plate", canonical).Int("tests", len(tests)).Msg("mot history hit")
	return tests, fetch.StatusFound, nil
}

func mapTests(raw []apiTest) []vehicle.MOTTest {
	tests := make([]vehicle.MOTTest, 0, len(raw))
	for _, rt := range raw {
		test := vehicle.MOTTest{
			CompletedDate: parseTestDate(rt.CompletedDate),
			Result:        mapResult(rt.TestResult),
			TestNumber:    rt.MOTTestNumber,
		}
		if test.Result == vehicle.TestResultPassed {
			test.ExpiryDate = rt.ExpiryDate
		}
		// Odometer strings arrive comma-formatted; only actual readings
		// carry a number worth parsing.
		if strings.EqualFold(rt.OdometerResultType, "READ") {
			test.Odometer = parseOdometer(rt.OdometerValue)
			test.OdometerUnit = rt.OdometerUnit
		}
		for _, d := range rt.Defects {
			test.Defects = append(test.Defects, vehicle.Defect{
				Text:      d.Text,
				Kind:      mapDefectKind(d.Type),
				Dangerous: d.Dangerous,
			})
		}
		tests = append(tests, test)
	}

	sort.Slice(tests, func(i, j int) bool {
		return tests[i].CompletedDate.After(tests[j].CompletedDate)
	})
	return tests
}

func mapResult(text string) vehicle.TestResult {
	if strings.EqualFold(strings.TrimSpace(text), "passed") {
		return vehicle.TestResultPassed
	}
	return vehicle.TestResultFailed
}

// defectKinds maps the API severity vocabulary case-insensitively; anything
// unrecognized defaults to Advisory.
var defectKinds = map[string]vehicle.DefectKind{
	"advisory":  vehicle.DefectAdvisory,
	"minor":     vehicle.DefectMinor,
	"major":     vehicle.DefectMajor,
	"dangerous": vehicle.DefectDangerous,
	"fail":      vehicle.DefectFail,
	"prs":       vehicle.DefectPassedRiskStatement,
}

func mapDefectKind(text string) vehicle.DefectKind {
	if kind, ok := defectKinds[strings.ToLower(strings.TrimSpace(text))]; ok {
		return kind
	}
	return vehicle.DefectAdvisory
}

func parseOdometer(value string) int {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0
	}
	return n
}

var testDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006.01.02 15:04:05",
	"2006-01-02",
}

func parseTestDate(value string) time.Time {
	for _, layout := range testDateLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}
	return time.Time{}
}
