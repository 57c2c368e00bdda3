package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	full := writeTempJSON(t, dir, "full.json", map[string]any{
		"api_base_url":           "https://www.example/api",
		"session_check_interval": "10s",
		"request_timeout":        2000000000,
		"metrics_addr":           ":9464",
		"log_level":              "debug",
		"log_format":             "json",
		"otlp_endpoint":          "collector:4318",
	})

	t.Run("loads from -config flag", func(t *testing.T) {
		t.Setenv("CAPGALLERY_CONFIG", "")
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, []string{"-config", full}))

		assert.Equal(t, "https://www.example/api", cfg.APIBaseURL)
		assert.Equal(t, 10*time.Second, cfg.SessionCheckInterval)
		assert.Equal(t, 2*time.Second, cfg.RequestTimeout)
		assert.Equal(t, ":9464", cfg.MetricsAddr)
		assert.Equal(t, "debug", cfg.LogLevel)
		assert.Equal(t, "json", cfg.LogFormat)
		assert.Equal(t, "collector:4318", cfg.OTLPEndpoint)
	})

	t.Run("loads from environment", func(t *testing.T) {
		t.Setenv("CAPGALLERY_CONFIG", full)
		cfg := &Config{}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "https://www.example/api", cfg.APIBaseURL)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		t.Setenv("CAPGALLERY_CONFIG", "")
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{"log_level": "warn"})

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-c", partial}))

		assert.Equal(t, "warn", cfg.LogLevel)
		assert.Equal(t, "http://127.0.0.1:8080/api", cfg.APIBaseURL)
		assert.Equal(t, 30*time.Second, cfg.SessionCheckInterval)
	})

	t.Run("no file → no changes", func(t *testing.T) {
		t.Setenv("CAPGALLERY_CONFIG", "")
		cfg := &Config{APIBaseURL: "http://defaults:1234"}
		require.NoError(t, parseJson(cfg, nil))
		assert.Equal(t, "http://defaults:1234", cfg.APIBaseURL)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		t.Setenv("CAPGALLERY_CONFIG", "")
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		require.Error(t, parseJson(&Config{}, []string{"-config", bad}))
	})

	t.Run("missing file → error", func(t *testing.T) {
		t.Setenv("CAPGALLERY_CONFIG", "")
		require.Error(t, parseJson(&Config{}, []string{"-c", filepath.Join(dir, "nope.json")}))
	})
}
