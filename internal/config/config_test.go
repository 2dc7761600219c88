package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoadDefaults(t *testing.T) {
	for _, name := range []string{
		"FINTRACK_LISTEN_ADDR", "FINTRACK_DEBUG", "FINTRACK_BACKEND", "FINTRACK_PASSWORD",
		"FINTRACK_REDIS_ADDR", "FINTRACK_REDIS_DB", "FINTRACK_QUOTE_URL",
		"FINTRACK_POLL_INTERVAL", "FINTRACK_REQUEST_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
	t.Setenv("FINTRACK_DATA_DIR", t.TempDir())

	cfg := Load(zerolog.Nop())

	if cfg.ListenAddr != ":8080" {
		t.Errorf("ListenAddr = %q, want :8080", cfg.ListenAddr)
	}
	if cfg.Backend != BackendFile {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendFile)
	}
	if cfg.QuoteURL != DefaultQuoteURL {
		t.Errorf("QuoteURL = %q", cfg.QuoteURL)
	}
	if cfg.PollInterval != time.Minute {
		t.Errorf("PollInterval = %v, want 1m", cfg.PollInterval)
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("FINTRACK_DATA_DIR", dir)
	t.Setenv("FINTRACK_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("FINTRACK_DEBUG", "1")
	t.Setenv("FINTRACK_BACKEND", BackendFile)
	t.Setenv("FINTRACK_PASSWORD", "secret")
	t.Setenv("FINTRACK_REDIS_DB", "3")
	t.Setenv("FINTRACK_POLL_INTERVAL", "5s")
	t.Setenv("FINTRACK_REQUEST_TIMEOUT", "250ms")

	cfg := Load(zerolog.Nop())

	if cfg.DataDirectory != dir {
		t.Errorf("DataDirectory = %q, want %q", cfg.DataDirectory, dir)
	}
	if cfg.ListenAddr != "127.0.0.1:9999" {
		t.Errorf("ListenAddr = %q", cfg.ListenAddr)
	}
	if !cfg.Debug {
		t.Error("Debug should be true")
	}
	if cfg.Password != "secret" {
		t.Errorf("Password = %q", cfg.Password)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("RedisDB = %d, want 3", cfg.RedisDB)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}
	if cfg.RequestTimeout != 250*time.Millisecond {
		t.Errorf("RequestTimeout = %v, want 250ms", cfg.RequestTimeout)
	}
}

func TestLoadCreatesDataDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")
	t.Setenv("FINTRACK_DATA_DIR", dir)
	t.Setenv("FINTRACK_BACKEND", BackendFile)

	Load(zerolog.Nop())

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("data directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", dir)
	}
}

func TestDurationEnv(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", time.Second},
		{"2m", 2 * time.Minute},
		{"soon", time.Second},
		{"-5s", time.Second},
		{"0s", time.Second},
	}

	for _, tt := range tests {
		t.Setenv("FINTRACK_TEST_DURATION", tt.value)
		if got := durationEnv(zerolog.Nop(), "FINTRACK_TEST_DURATION", time.Second); got != tt.want {
			t.Errorf("durationEnv(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}
