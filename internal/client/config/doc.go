// Package config loads runtime configuration for the capgallery client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c / -config or $CAPGALLERY_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   backend API base URL
//	-i int      session check interval (seconds)
//	-t int      request timeout (seconds)
//	-m string   metrics listen address
//	-l string   log level
//
// # JSON schema
//
//	{
//	  "api_base_url": "https://gallery.example.com/api",
//	  "session_check_interval": "30s",
//	  "request_timeout": "0s",
//	  "metrics_addr": "127.0.0.1:9464",
//	  "log_level": "info",
//	  "log_format": "json",
//	  "otlp_endpoint": "127.0.0.1:4318"
//	}
//
// The API base URL is resolved exactly once here; every collaborator receives
// it from the resulting *Config instead of declaring its own.
package config
