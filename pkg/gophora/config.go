package gophora

import "time"

// Config holds settings for the Gophora backend client.
type Config struct {
	// BaseURL is the HTTP endpoint of the Gophora REST backend, e.g. http://localhost:8000
	BaseURL string `yaml:"base_url" json:"base_url"`
	// Timeout is the per-request timeout
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL: "http://localhost:8000",
		Timeout: 15 * time.Second,
	}
}
