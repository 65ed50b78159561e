package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	os.Unsetenv("LAUNCH_DELAY_SECONDS")
	os.Unsetenv("RENDER_TIMEOUT_SECONDS")

	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	if cfg.LaunchDelay() != 5*time.Second {
		t.Errorf("Expected default launch delay 5s, got %v", cfg.LaunchDelay())
	}
	if cfg.RenderTimeout() != 60*time.Second {
		t.Errorf("Expected default render timeout 60s, got %v", cfg.RenderTimeout())
	}
	if cfg.Scan.MaxExpirations != 5 {
		t.Errorf("Expected 5 expirations by default, got %d", cfg.Scan.MaxExpirations)
	}
	if cfg.Scan.FetchRetries != 0 {
		t.Errorf("Expected no retries by default, got %d", cfg.Scan.FetchRetries)
	}
	if cfg.Selectors.CallsTable != DefaultCallsTableSelector {
		t.Errorf("Expected default calls selector, got %q", cfg.Selectors.CallsTable)
	}
}

func TestLaunchDelayEnvOverride(t *testing.T) {
	os.Setenv("LAUNCH_DELAY_SECONDS", "2")
	defer os.Unsetenv("LAUNCH_DELAY_SECONDS")

	cfg := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))

	if cfg.LaunchDelay() != 2*time.Second {
		t.Errorf("Expected launch delay 2s from env, got %v", cfg.LaunchDelay())
	}
}

func TestYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlData := `
quote_host: http://localhost:9000/
tickers:
  default: [MSFT, AAPL]
scan:
  launch_delay_seconds: 1
  fetch_retries: 2
fetcher:
  mode: static
  render_timeout_seconds: 15
selectors:
  price: "span.price"
logging:
  log_level: debug
`
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := LoadFile(path)

	if cfg.QuoteHost != "http://localhost:9000" {
		t.Errorf("Expected trimmed quote host, got %q", cfg.QuoteHost)
	}
	if len(cfg.DefaultTickers) != 2 || cfg.DefaultTickers[0] != "MSFT" {
		t.Errorf("Expected tickers from YAML, got %v", cfg.DefaultTickers)
	}
	if cfg.LaunchDelay() != time.Second {
		t.Errorf("Expected launch delay 1s, got %v", cfg.LaunchDelay())
	}
	if cfg.Scan.FetchRetries != 2 {
		t.Errorf("Expected 2 retries, got %d", cfg.Scan.FetchRetries)
	}
	if cfg.Fetcher.Mode != "static" || cfg.RenderTimeout() != 15*time.Second {
		t.Errorf("Expected static fetcher with 15s timeout, got %s/%v", cfg.Fetcher.Mode, cfg.RenderTimeout())
	}
	if cfg.Selectors.Price != "span.price" {
		t.Errorf("Expected overridden price selector, got %q", cfg.Selectors.Price)
	}
	if cfg.Selectors.Bid != DefaultBidSelector {
		t.Errorf("Expected bid selector to keep its default, got %q", cfg.Selectors.Bid)
	}
	if cfg.Logging.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %q", cfg.Logging.LogLevel)
	}
}

func TestYAMLExplicitZeroValues(t *testing.T) {
	os.Unsetenv("LAUNCH_DELAY_SECONDS")
	os.Unsetenv("CHROME_HEADLESS")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlData := `
scan:
  launch_delay_seconds: 0
fetcher:
  headless: false
`
	if err := os.WriteFile(path, []byte(yamlData), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := LoadFile(path)
	if cfg.Fetcher.Headless {
		t.Error("Expected headless=false from YAML, got true")
	}
	if cfg.LaunchDelay() != 0 {
		t.Errorf("Expected launch delay 0 from YAML, got %v", cfg.LaunchDelay())
	}

	// Keys left out keep their defaults
	empty := filepath.Join(dir, "empty.yaml")
	if err := os.WriteFile(empty, []byte("port: \"9090\"\n"), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	cfg = LoadFile(empty)
	if !cfg.Fetcher.Headless || cfg.LaunchDelay() != 5*time.Second {
		t.Errorf("Expected defaults headless=true delay=5s, got %v/%v", cfg.Fetcher.Headless, cfg.LaunchDelay())
	}
}

func TestFormatCSVFilename(t *testing.T) {
	got := FormatCSVFilename("{time}_{ticker}_{run}.csv", "AAPL", "r1", "2026-10-17_09-30-00")
	if got != "2026-10-17_09-30-00_AAPL_r1.csv" {
		t.Errorf("unexpected filename %q", got)
	}
}
