// Package geo wraps the public countriesnow API used by the registration
// form's country/city cascade. The payload comes from a third party, so it
// is validated against a JSON schema before the portal trusts it.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sort"
	"time"
)

// countriesPath is the only endpoint the portal consumes.
const countriesPath = "/api/v0.1/countries"

// Country pairs a country name with its known cities, sorted.
type Country struct {
	Name   string
	Cities []string
}

// Config holds settings for the geo client.
type Config struct {
	// BaseURL is the countriesnow endpoint, e.g. https://countriesnow.space
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://countriesnow.space",
		Timeout: 15 * time.Second,
	}
}

// Client fetches country and city data.
type Client struct {
	base   *url.URL
	cfg    Config
	client *http.Client
}

// package-level logger for pkg/geo; can be replaced by callers
var logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))

// SetLogger sets the logger used by pkg/geo. Passing nil is a no-op.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// NewClient creates a new geo client. A nil httpClient gets a default with
// the configured timeout.
func NewClient(cfg Config, httpClient *http.Client) (*Client, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	u, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}

	return &Client{base: u, cfg: cfg, client: httpClient}, nil
}

type countriesResponse struct {
	Error bool   `json:"error"`
	Msg   string `json:"msg"`
	Data  []struct {
		Country string   `json:"country"`
		Cities  []string `json:"cities"`
	} `json:"data"`
}

// Countries fetches the full country/city catalog. Cities come back sorted
// per country, ready for the registration dropdowns.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	u := *c.base
	u.Path = countriesPath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch countries: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read countries response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("countries endpoint returned %d", resp.StatusCode)
	}

	if err := validateCountriesPayload(ctx, raw); err != nil {
		logger.Warn("geo: rejected countries payload", slog.Any("err", err))
		return nil, err
	}

	var payload countriesResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode countries response: %w", err)
	}
	if payload.Error {
		return nil, fmt.Errorf("countries endpoint error: %s", payload.Msg)
	}

	out := make([]Country, 0, len(payload.Data))
	for _, d := range payload.Data {
		cities := append([]string(nil), d.Cities...)
		sort.Strings(cities)
		out = append(out, Country{Name: d.Country, Cities: cities})
	}
	return out, nil
}

// CitiesFor returns the sorted city list for one country, or nil when the
// country is unknown.
func CitiesFor(countries []Country, name string) []string {
	for _, c := range countries {
		if c.Name == name {
			return c.Cities
		}
	}
	return nil
}
