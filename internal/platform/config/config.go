package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDataDir      = "~/.fasttrack"
	DefaultSyncInterval = 30 * time.Second
	DefaultTickInterval = time.Second
)

type Config struct {
	DataDir         string
	CachePath       string
	CredentialsPath string
	PrefsPath       string
	JournalDir      string
	TemplatePath    string
	LogPath         string
	RemoteURL       string
	SyncInterval    time.Duration
	TickInterval    time.Duration
	LogLevel        string
	LogFormat       string
}

// fileConfig mirrors the optional config.yaml inside the data dir.
type fileConfig struct {
	RemoteURL    string `yaml:"remote_url"`
	SyncInterval string `yaml:"sync_interval"`
	TickInterval string `yaml:"tick_interval"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	JournalDir   string `yaml:"journal_dir"`
}

func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		dataDir = DefaultDataDir
	}
	dir, err := ExpandPath(dataDir)
	if err != nil {
		return Config{}, fmt.Errorf("resolve data dir: %w", err)
	}
	cfg := Config{
		DataDir:         dir,
		CachePath:       filepath.Join(dir, "local-cache.json"),
		CredentialsPath: filepath.Join(dir, "credentials.json"),
		PrefsPath:       filepath.Join(dir, "prefs.toml"),
		JournalDir:      filepath.Join(dir, "journal"),
		TemplatePath:    filepath.Join(dir, "journal.mustache"),
		LogPath:         filepath.Join(dir, "fasttrack.log"),
		SyncInterval:    DefaultSyncInterval,
		TickInterval:    DefaultTickInterval,
		LogLevel:        "info",
		LogFormat:       "text",
	}
	if err := cfg.applyFile(filepath.Join(dir, "config.yaml")); err != nil {
		return Config{}, err
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	fc := fileConfig{}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}
	if fc.RemoteURL != "" {
		c.RemoteURL = strings.TrimRight(fc.RemoteURL, "/")
	}
	if d, ok := parseInterval(fc.SyncInterval); ok {
		c.SyncInterval = d
	}
	if d, ok := parseInterval(fc.TickInterval); ok {
		c.TickInterval = d
	}
	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		c.LogFormat = fc.LogFormat
	}
	if fc.JournalDir != "" {
		dir, err := ExpandPath(fc.JournalDir)
		if err != nil {
			return fmt.Errorf("resolve journal dir: %w", err)
		}
		c.JournalDir = dir
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := envOrDefault("FASTTRACK_REMOTE_URL", ""); v != "" {
		c.RemoteURL = strings.TrimRight(v, "/")
	}
	if v := envOrDefault("FASTTRACK_LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if d, ok := parseInterval(envOrDefault("FASTTRACK_SYNC_INTERVAL", "")); ok {
		c.SyncInterval = d
	}
}

// ServerConfig configures the fastbase remote store.
type ServerConfig struct {
	Port         string
	DatabasePath string
	AuthToken    string
	LogLevel     string
}

func LoadServer() ServerConfig {
	cfg := ServerConfig{
		Port:         envOrDefault("FASTBASE_PORT", "8090"),
		DatabasePath: envOrDefault("FASTBASE_DATABASE_PATH", "fastbase.db"),
		AuthToken:    strings.TrimSpace(os.Getenv("FASTBASE_AUTH_TOKEN")),
		LogLevel:     envOrDefault("FASTBASE_LOG_LEVEL", "info"),
	}
	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.Port = p
	}
	return cfg
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func parseInterval(v string) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
