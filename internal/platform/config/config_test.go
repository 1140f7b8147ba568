package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewDefaultsUnderDataDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FASTTRACK_REMOTE_URL", "")
	t.Setenv("FASTTRACK_LOG_LEVEL", "")
	t.Setenv("FASTTRACK_SYNC_INTERVAL", "")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.CachePath != filepath.Join(dir, "local-cache.json") {
		t.Fatalf("unexpected cache path %s", cfg.CachePath)
	}
	if cfg.SyncInterval != 30*time.Second || cfg.TickInterval != time.Second {
		t.Fatalf("unexpected intervals %s %s", cfg.SyncInterval, cfg.TickInterval)
	}
	if cfg.RemoteURL != "" {
		t.Fatalf("remote url should be empty by default, got %q", cfg.RemoteURL)
	}
}

func TestConfigFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := "remote_url: http://example.test/\nsync_interval: 10s\nlog_level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("FASTTRACK_REMOTE_URL", "")
	t.Setenv("FASTTRACK_LOG_LEVEL", "warn")
	t.Setenv("FASTTRACK_SYNC_INTERVAL", "bogus")

	cfg, err := New(dir)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	if cfg.RemoteURL != "http://example.test" {
		t.Fatalf("expected trimmed remote url, got %q", cfg.RemoteURL)
	}
	if cfg.SyncInterval != 10*time.Second {
		t.Fatalf("expected 10s sync interval from file, got %s", cfg.SyncInterval)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env log level to win, got %q", cfg.LogLevel)
	}
}

func TestBrokenConfigFileFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("remote_url: [unterminated"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("expected decode error")
	}
}
