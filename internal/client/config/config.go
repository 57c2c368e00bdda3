package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrInvalidBaseURL = errors.New("api base url must be an absolute http(s) url")

// Config holds runtime settings for the capgallery client.
//
// Fields:
//   - APIBaseURL: root of the backend API, e.g. "https://host/api". Resolved
//     once at startup and shared by every collaborator.
//   - SessionCheckInterval: how often a mounted view re-probes the session.
//     Zero disables the watcher.
//   - RequestTimeout: http.Client timeout. Zero means the transport imposes none.
//   - MetricsAddr: listen address for /metrics; empty disables it.
//   - LogLevel / LogFormat: slog level and handler ("text" or "json").
//   - OTLPEndpoint: OTLP/HTTP collector host:port; empty disables tracing export.
type Config struct {
	APIBaseURL           string
	SessionCheckInterval time.Duration
	RequestTimeout       time.Duration
	MetricsAddr          string
	LogLevel             string
	LogFormat            string
	OTLPEndpoint         string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.SessionCheckInterval = 30 * time.Second
	c.RequestTimeout = 0
	c.MetricsAddr = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.OTLPEndpoint = ""
}

// Validate checks the fields that cannot be defaulted at use site.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidBaseURL
	}
	if c.SessionCheckInterval < 0 || c.RequestTimeout < 0 {
		return errors.New("intervals must not be negative")
	}
	return nil
}

// BaseURL returns APIBaseURL without a trailing slash.
func (c *Config) BaseURL() string {
	return strings.TrimRight(c.APIBaseURL, "/")
}

// LoadConfig constructs a Config from defaults, then overlays values from a
// JSON file (if one is named in args or the environment) and from flags in
// args. Later sources take precedence over earlier ones.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
