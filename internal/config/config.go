package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr          string        `yaml:"addr"`
	BackendURL    string        `yaml:"backend_url"`
	GeoURL        string        `yaml:"geo_url"`
	APITimeout    time.Duration `yaml:"timeout"`
	SessionDBPath string        `yaml:"session_db_path"`
	CookieName    string        `yaml:"cookie_name"`
	CookieSecret  string        `yaml:"cookie_secret"`
}

func LoadConfig(path string) (*Config, error) {
	apiTimeout := 15 * time.Second
	if v := os.Getenv("PORTAL_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORTAL_TIMEOUT %q: %w", v, err)
		}
		apiTimeout = d
	}

	cfg := &Config{
		Addr:          getEnv("PORTAL_ADDR", ":8080"),
		BackendURL:    getEnv("PORTAL_BACKEND_URL", "http://localhost:8000"),
		GeoURL:        getEnv("PORTAL_GEO_URL", "https://countriesnow.space"),
		APITimeout:    apiTimeout,
		SessionDBPath: getEnv("PORTAL_SESSION_DB_PATH", "portal.db"),
		CookieName:    getEnv("PORTAL_COOKIE_NAME", "gophora_session"),
		CookieSecret:  getEnv("PORTAL_COOKIE_SECRET", "supersecretkey"),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate checks the loaded configuration for values that must not reach
// a deployed environment. The default cookie secret is only acceptable when
// PORTAL_ENV is "development".
func (c *Config) Validate() error {
	if c.CookieSecret == "" || (c.CookieSecret == "supersecretkey" && os.Getenv("PORTAL_ENV") != "development") {
		return fmt.Errorf("insecure cookie secret; set PORTAL_COOKIE_SECRET")
	}
	if _, err := url.ParseRequestURI(c.BackendURL); err != nil {
		return fmt.Errorf("invalid backend url %q: %w", c.BackendURL, err)
	}
	if c.APITimeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
