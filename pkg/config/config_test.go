package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const validYAML = `
environment: test
server:
  port: 8080
  read_timeout: 10s
  write_timeout: 30s
  shutdown_timeout: 15s
metrics:
  enabled: true
  path: /metrics
vendor:
  chart_base_url: https://chart.example.com
  quote_base_url: https://quote.example.com
  timeout: 15s
stream:
  enabled: false
scanner:
  workers: 10
  min_fib_score: 40
  min_rr: 1.0
cache:
  redis:
    enabled: false
    addr: localhost:6379
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Environment != "test" {
		t.Fatalf("environment = %q", cfg.Environment)
	}
	if cfg.Server.Port != 8080 || cfg.Server.ReadTimeout != 10*time.Second {
		t.Fatalf("server = %+v", cfg.Server)
	}
	if cfg.Vendor.ChartBaseURL != "https://chart.example.com" {
		t.Fatalf("chart url = %q", cfg.Vendor.ChartBaseURL)
	}
	if cfg.Scanner.Workers != 10 || cfg.Scanner.MinFibScore != 40 {
		t.Fatalf("scanner = %+v", cfg.Scanner)
	}
	if cfg.Cache.Redis.Enabled {
		t.Fatalf("redis should be disabled")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"no environment", `
server: {port: 8080}
vendor: {chart_base_url: x}
`},
		{"bad port", `
environment: test
server: {port: 99999}
vendor: {chart_base_url: x}
`},
		{"no chart url", `
environment: test
server: {port: 8080}
`},
		{"too many workers", `
environment: test
server: {port: 8080}
vendor: {chart_base_url: x}
scanner: {workers: 50}
`},
		{"stream without url", `
environment: test
server: {port: 8080}
vendor: {chart_base_url: x}
stream: {enabled: true}
`},
	}
	for _, tc := range cases {
		if _, err := Load(writeConfig(t, tc.yaml)); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}
}

func TestLoadWithEnvOverrides(t *testing.T) {
	t.Setenv("QUOTE_API_KEY", "secret")
	t.Setenv("CHART_BASE_URL", "https://override.example.com")
	t.Setenv("STREAM_SYMBOLS", "PTT,AOT,KBANK")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Vendor.QuoteAPIKey != "secret" {
		t.Fatalf("api key = %q", cfg.Vendor.QuoteAPIKey)
	}
	if cfg.Vendor.ChartBaseURL != "https://override.example.com" {
		t.Fatalf("chart url = %q", cfg.Vendor.ChartBaseURL)
	}
	if len(cfg.Stream.Symbols) != 3 || cfg.Stream.Symbols[0] != "PTT" {
		t.Fatalf("symbols = %v", cfg.Stream.Symbols)
	}
	// Setting the Redis address also switches Redis on.
	if !cfg.Cache.Redis.Enabled || cfg.Cache.Redis.Addr != "redis:6379" {
		t.Fatalf("redis = %+v", cfg.Cache.Redis)
	}
}

func TestLoadWithEnvNoOverrides(t *testing.T) {
	t.Setenv("QUOTE_API_KEY", "")
	t.Setenv("CHART_BASE_URL", "")
	t.Setenv("STREAM_SYMBOLS", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := LoadWithEnv(writeConfig(t, validYAML))
	if err != nil {
		t.Fatalf("LoadWithEnv: %v", err)
	}
	if cfg.Vendor.ChartBaseURL != "https://chart.example.com" {
		t.Fatalf("chart url = %q", cfg.Vendor.ChartBaseURL)
	}
	if cfg.Cache.Redis.Enabled {
		t.Fatalf("redis must stay disabled without REDIS_ADDR")
	}
}
