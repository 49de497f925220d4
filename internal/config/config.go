// Package config provides hierarchical configuration loading for Tillcast.
// Precedence: defaults < YAML file < environment variables.
package config

import "time"

// Config holds all runtime configuration for the Tillcast service.
type Config struct {
	Server    Server    `yaml:"server"`
	Shops     Shops     `yaml:"shops"`
	NATS      NATS      `yaml:"nats"`
	Rate      Rate      `yaml:"rate"`
	Ingest    Ingest    `yaml:"ingest"`
	Logging   Logging   `yaml:"logging"`
	Telemetry Telemetry `yaml:"telemetry"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port       string `yaml:"port"`
	CORSOrigin string `yaml:"cors_origin"`
}

// Shops holds shop profile directory and cache configuration.
type Shops struct {
	Dir          string        `yaml:"dir"`
	CacheEntries int64         `yaml:"cache_entries"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

// NATS holds the optional JetStream ingestion bridge configuration.
// An empty URL disables the bridge.
type NATS struct {
	URL string `yaml:"url"`
}

// Rate holds per-IP rate limiting for the ingestion endpoints.
type Rate struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// Ingest holds the fallback values for omitted transaction fields.
type Ingest struct {
	DefaultCurrency string `yaml:"default_currency"`
	DefaultMethod   string `yaml:"default_method"`
	DefaultItem     string `yaml:"default_item"`
}

// Logging holds structured logging configuration.
type Logging struct {
	Level   string `yaml:"level"`
	Service string `yaml:"service"`
}

// Telemetry holds the optional OTLP metric export configuration.
type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint"`
}

// Defaults returns a Config with sensible default values for local development.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:       "8080",
			CORSOrigin: "http://localhost:3000",
		},
		Shops: Shops{
			Dir:          "shops",
			CacheEntries: 1024,
			CacheTTL:     time.Minute,
		},
		Rate: Rate{
			RequestsPerSecond: 20,
			Burst:             40,
		},
		Ingest: Ingest{
			DefaultCurrency: "EUR",
			DefaultMethod:   "card",
			DefaultItem:     "misc",
		},
		Logging: Logging{
			Level:   "info",
			Service: "tillcast",
		},
	}
}
