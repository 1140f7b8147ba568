package out

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fasttrack/internal/modules/fasting/domain"
	fastingout "fasttrack/internal/modules/fasting/port/out"
)

// cacheFile is the on-disk shape of the per-device document.
type cacheFile struct {
	SchemaVersion    int              `json:"schemaVersion"`
	FastingHistory   []domain.Session `json:"fastingHistory"`
	IsFasting        bool             `json:"isFasting"`
	FastingStartTime *time.Time       `json:"fastingStartTime,omitempty"`
	FastingType      string           `json:"fastingType,omitempty"`
	ActiveSessionID  string           `json:"activeSessionId,omitempty"`
	ActiveRemoteID   string           `json:"activeRemoteId,omitempty"`
}

type FileLocalCache struct {
	mu   sync.Mutex
	path string
}

func NewFileLocalCache(path string) fastingout.LocalCache {
	return &FileLocalCache{path: path}
}

func (c *FileLocalCache) Read(_ context.Context) (domain.CacheDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load()
}

func (c *FileLocalCache) Mutate(_ context.Context, fn func(doc *domain.CacheDocument) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc, err := c.load()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return c.store(doc)
}

func (c *FileLocalCache) load() (domain.CacheDocument, error) {
	payload, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.CacheDocument{}, nil
		}
		return domain.CacheDocument{}, fmt.Errorf("read local cache: %w", err)
	}
	f := cacheFile{}
	if err := json.Unmarshal(payload, &f); err != nil {
		return domain.CacheDocument{}, fmt.Errorf("decode local cache: %w", err)
	}
	return domain.CacheDocument{
		History: f.FastingHistory,
		Markers: domain.ActiveMarkers{
			IsFasting: f.IsFasting,
			SessionID: f.ActiveSessionID,
			StartTime: f.FastingStartTime,
			Protocol:  domain.Protocol(f.FastingType),
			RemoteID:  f.ActiveRemoteID,
		},
	}, nil
}

func (c *FileLocalCache) store(doc domain.CacheDocument) error {
	f := cacheFile{
		SchemaVersion:  domain.SchemaVersion,
		FastingHistory: doc.History,
		IsFasting:      doc.Markers.IsFasting,
	}
	if f.FastingHistory == nil {
		f.FastingHistory = []domain.Session{}
	}
	if doc.Markers.IsFasting {
		f.FastingStartTime = doc.Markers.StartTime
		f.FastingType = string(doc.Markers.Protocol)
		f.ActiveSessionID = doc.Markers.SessionID
		f.ActiveRemoteID = doc.Markers.RemoteID
	}
	payload, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal local cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create local cache dir: %w", err)
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write local cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		return fmt.Errorf("replace local cache: %w", err)
	}
	return nil
}
