package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "tillcast.yaml"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
// The YAML file is optional; a missing file is not an error.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) {
	setString(&cfg.Server.Port, "TILLCAST_PORT")
	setString(&cfg.Server.CORSOrigin, "TILLCAST_CORS_ORIGIN")
	setString(&cfg.Shops.Dir, "TILLCAST_SHOPS_DIR")
	setInt64(&cfg.Shops.CacheEntries, "TILLCAST_SHOP_CACHE_ENTRIES")
	setDuration(&cfg.Shops.CacheTTL, "TILLCAST_SHOP_CACHE_TTL")
	setString(&cfg.NATS.URL, "NATS_URL")
	setFloat64(&cfg.Rate.RequestsPerSecond, "TILLCAST_RATE_RPS")
	setInt(&cfg.Rate.Burst, "TILLCAST_RATE_BURST")
	setString(&cfg.Ingest.DefaultCurrency, "TILLCAST_DEFAULT_CURRENCY")
	setString(&cfg.Ingest.DefaultMethod, "TILLCAST_DEFAULT_METHOD")
	setString(&cfg.Ingest.DefaultItem, "TILLCAST_DEFAULT_ITEM")
	setString(&cfg.Logging.Level, "TILLCAST_LOG_LEVEL")
	setString(&cfg.Logging.Service, "TILLCAST_LOG_SERVICE")
	setString(&cfg.Telemetry.OTLPEndpoint, "TILLCAST_OTLP_ENDPOINT")
}

// validate checks that required fields are set.
func validate(cfg *Config) error {
	if cfg.Server.Port == "" {
		return errors.New("server.port is required")
	}
	if cfg.Shops.Dir == "" {
		return errors.New("shops.dir is required")
	}
	if cfg.Shops.CacheEntries <= 0 {
		return errors.New("shops.cache_entries must be positive")
	}
	if cfg.Rate.RequestsPerSecond <= 0 || cfg.Rate.Burst <= 0 {
		return errors.New("rate limits must be positive")
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, env string) {
	if v := os.Getenv(env); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, env string) {
	if v := os.Getenv(env); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDuration(dst *time.Duration, env string) {
	if v := os.Getenv(env); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
