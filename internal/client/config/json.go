package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/capgallery/internal/flagx"
	"github.com/dmitrijs2005/capgallery/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration, so "3s" and integer nanoseconds are both accepted.
type JsonConfig struct {
	APIBaseURL           string          `json:"api_base_url"`
	SessionCheckInterval *timex.Duration `json:"session_check_interval"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	MetricsAddr          string          `json:"metrics_addr"`
	LogLevel             string          `json:"log_level"`
	LogFormat            string          `json:"log_format"`
	OTLPEndpoint         string          `json:"otlp_endpoint"`
}

// parseJson overlays cfg with the fields present in the JSON file named by
// -c/-config (or $CAPGALLERY_CONFIG). Absent keys keep their current value.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return err
	}

	if jc.APIBaseURL != "" {
		cfg.APIBaseURL = jc.APIBaseURL
	}
	if jc.SessionCheckInterval != nil {
		cfg.SessionCheckInterval = jc.SessionCheckInterval.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MetricsAddr != "" {
		cfg.MetricsAddr = jc.MetricsAddr
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
	if jc.LogFormat != "" {
		cfg.LogFormat = jc.LogFormat
	}
	if jc.OTLPEndpoint != "" {
		cfg.OTLPEndpoint = jc.OTLPEndpoint
	}
	return nil
}
