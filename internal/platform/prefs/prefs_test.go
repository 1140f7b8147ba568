package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Parallel()
	s := NewStore(filepath.Join(t.TempDir(), "prefs.toml"))
	if got := s.Load().Protocol; got != DefaultProtocol {
		t.Fatalf("expected default protocol, got %q", got)
	}
}

func TestSetProtocolRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	s := NewStore(path)
	if err := s.SetProtocol("18:6"); err != nil {
		t.Fatalf("set protocol: %v", err)
	}
	if got := s.Protocol(); got != "18:6" {
		t.Fatalf("expected 18:6, got %q", got)
	}
	if err := s.SetProtocol(" "); err == nil {
		t.Fatalf("blank protocol must be rejected")
	}
}

func TestCorruptPrefsDegradeGracefully(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte("protocol = [oops"), 0o644); err != nil {
		t.Fatalf("write prefs: %v", err)
	}
	if got := NewStore(path).Load().Protocol; got != DefaultProtocol {
		t.Fatalf("expected default on corrupt file, got %q", got)
	}
}
