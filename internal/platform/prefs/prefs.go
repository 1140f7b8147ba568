// Package prefs persists small user choices between CLI invocations.
package prefs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const DefaultProtocol = "16:8"

// Prefs holds user preferences for fasttrack.
type Prefs struct {
	Protocol  string `toml:"protocol"`
	ExportDir string `toml:"export_dir,omitempty"`
}

// Store reads and writes Prefs at a fixed path.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load falls back to defaults when the file is missing or unreadable.
func (s *Store) Load() Prefs {
	p := Prefs{Protocol: DefaultProtocol}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return p
	}
	if err := toml.Unmarshal(raw, &p); err != nil {
		return Prefs{Protocol: DefaultProtocol}
	}
	if strings.TrimSpace(p.Protocol) == "" {
		p.Protocol = DefaultProtocol
	}
	return p
}

func (s *Store) Save(p Prefs) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}
	raw, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}
	return nil
}

// Protocol implements the fasting protocol preference port.
func (s *Store) Protocol() string {
	return s.Load().Protocol
}

func (s *Store) SetProtocol(protocol string) error {
	if strings.TrimSpace(protocol) == "" {
		return errors.New("protocol is empty")
	}
	p := s.Load()
	p.Protocol = protocol
	return s.Save(p)
}
