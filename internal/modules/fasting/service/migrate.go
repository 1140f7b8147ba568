package service

import (
	"context"
	"fmt"
	"log/slog"

	"fasttrack/internal/modules/fasting/domain"
	fastingout "fasttrack/internal/modules/fasting/port/out"
	identitydto "fasttrack/internal/modules/identity/dto"
	apperrors "fasttrack/internal/platform/errors"
)

type MigrationResult struct {
	Migrated int
	Failed   int
}

// Migrator pushes locally cached history to the remote store. Only entries the remote
// accepted are removed from the cache, so a failed record stays for the next attempt.
type Migrator struct {
	cache  fastingout.LocalCache
	remote fastingout.RemoteStore
	logger *slog.Logger
}

func NewMigrator(cache fastingout.LocalCache, remote fastingout.RemoteStore, logger *slog.Logger) *Migrator {
	return &Migrator{cache: cache, remote: remote, logger: logger}
}

func (m *Migrator) Migrate(ctx context.Context, identity identitydto.Identity) (MigrationResult, error) {
	if !identity.Present() || m.remote == nil {
		return MigrationResult{}, apperrors.ErrUnauthenticated
	}
	doc, err := m.cache.Read(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("read local history: %w", err)
	}
	if len(doc.History) == 0 {
		return MigrationResult{}, nil
	}

	result := MigrationResult{}
	migrated := make(map[string]bool, len(doc.History))
	for _, session := range doc.History {
		if session.InProgress() {
			continue
		}
		if _, err := m.remote.Insert(ctx, identity, session); err != nil {
			result.Failed++
			m.logger.Warn("migrate record failed", "id", session.ID, "err", err)
			continue
		}
		migrated[session.ID] = true
		result.Migrated++
	}
	if result.Migrated == 0 {
		return result, nil
	}

	err = m.cache.Mutate(ctx, func(doc *domain.CacheDocument) error {
		kept := doc.History[:0]
		for _, s := range doc.History {
			if !migrated[s.ID] {
				kept = append(kept, s)
			}
		}
		doc.History = kept
		return nil
	})
	if err != nil {
		return result, fmt.Errorf("clear migrated history: %w", err)
	}
	m.logger.Info("local history migrated", "user", identity.UserID, "migrated", result.Migrated, "failed", result.Failed)
	return result, nil
}
