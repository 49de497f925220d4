package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	if cfg.Server.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Shops.Dir != "shops" {
		t.Errorf("expected shops dir, got %s", cfg.Shops.Dir)
	}
	if cfg.Ingest.DefaultCurrency != "EUR" {
		t.Errorf("expected default currency EUR, got %s", cfg.Ingest.DefaultCurrency)
	}
	if cfg.NATS.URL != "" {
		t.Errorf("expected NATS disabled by default, got %s", cfg.NATS.URL)
	}
}

func TestLoadYAMLOverride(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "test.yaml")

	content := `
server:
  port: "9090"
  cors_origin: "http://example.com"
shops:
  dir: "/etc/tillcast/shops"
  cache_ttl: 5m
logging:
  level: "debug"
`
	if err := os.WriteFile(yamlPath, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := loadYAML(&cfg, yamlPath); err != nil {
		t.Fatal(err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Shops.Dir != "/etc/tillcast/shops" {
		t.Errorf("expected shops dir override, got %s", cfg.Shops.Dir)
	}
	if cfg.Shops.CacheTTL != 5*time.Minute {
		t.Errorf("expected 5m cache ttl, got %v", cfg.Shops.CacheTTL)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Logging.Level)
	}
	// Unchanged fields keep defaults
	if cfg.Ingest.DefaultMethod != "card" {
		t.Errorf("expected default method card, got %s", cfg.Ingest.DefaultMethod)
	}
}

func TestLoadYAMLMissing(t *testing.T) {
	cfg := Defaults()
	if err := loadYAML(&cfg, "/nonexistent/path.yaml"); err != nil {
		t.Errorf("missing YAML should not error, got %v", err)
	}
}

func TestEnvOverride(t *testing.T) {
	cfg := Defaults()

	t.Setenv("TILLCAST_PORT", "7070")
	t.Setenv("TILLCAST_SHOPS_DIR", "/data/shops")
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("TILLCAST_RATE_RPS", "5.5")
	t.Setenv("TILLCAST_SHOP_CACHE_TTL", "30s")

	loadEnv(&cfg)

	if cfg.Server.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Server.Port)
	}
	if cfg.Shops.Dir != "/data/shops" {
		t.Errorf("expected /data/shops, got %s", cfg.Shops.Dir)
	}
	if cfg.NATS.URL != "nats://broker:4222" {
		t.Errorf("expected NATS URL override, got %s", cfg.NATS.URL)
	}
	if cfg.Rate.RequestsPerSecond != 5.5 {
		t.Errorf("expected 5.5 rps, got %v", cfg.Rate.RequestsPerSecond)
	}
	if cfg.Shops.CacheTTL != 30*time.Second {
		t.Errorf("expected 30s ttl, got %v", cfg.Shops.CacheTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := validate(&cfg); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}

	bad := Defaults()
	bad.Shops.Dir = ""
	if err := validate(&bad); err == nil {
		t.Error("expected error for empty shops dir")
	}

	bad = Defaults()
	bad.Rate.Burst = 0
	if err := validate(&bad); err == nil {
		t.Error("expected error for zero burst")
	}
}
