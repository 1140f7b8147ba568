package out

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"fasttrack/internal/modules/identity/domain"
	identityout "fasttrack/internal/modules/identity/port/out"
)

// FileCredentialStore keeps the signed-in user in a private JSON file.
// A missing file means anonymous.
type FileCredentialStore struct {
	path string
}

func NewFileCredentialStore(path string) identityout.CredentialStore {
	return &FileCredentialStore{path: path}
}

func (s *FileCredentialStore) Load(_ context.Context) (domain.Credentials, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.Credentials{}, nil
		}
		return domain.Credentials{}, fmt.Errorf("read credentials: %w", err)
	}
	creds := domain.Credentials{}
	if err := json.Unmarshal(payload, &creds); err != nil {
		return domain.Credentials{}, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, nil
}

func (s *FileCredentialStore) Save(_ context.Context, creds domain.Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	payload, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace credentials: %w", err)
	}
	return nil
}

func (s *FileCredentialStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}
