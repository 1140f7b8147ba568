package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"fasttrack/internal/modules/fasting/domain"
	fastingout "fasttrack/internal/modules/fasting/port/out"
	identitydto "fasttrack/internal/modules/identity/dto"
	apperrors "fasttrack/internal/platform/errors"
)

// NewRecordStore picks the persistence strategy for an identity. Anonymous users, and
// installs without a remote, read and write the local cache only.
func NewRecordStore(identity identitydto.Identity, remote fastingout.RemoteStore, cache fastingout.LocalCache, logger *slog.Logger) fastingout.RecordStore {
	local := NewLocalRecordStore(cache)
	if !identity.Present() || remote == nil {
		return local
	}
	return &RemoteRecordStore{remote: remote, local: local, identity: identity, logger: logger}
}

type LocalRecordStore struct {
	cache fastingout.LocalCache
}

func NewLocalRecordStore(cache fastingout.LocalCache) *LocalRecordStore {
	return &LocalRecordStore{cache: cache}
}

func (s *LocalRecordStore) List(ctx context.Context) ([]domain.Session, error) {
	doc, err := s.cache.Read(ctx)
	if err != nil {
		return nil, err
	}
	history := append([]domain.Session(nil), doc.History...)
	domain.SortNewestFirst(history)
	return history, nil
}

func (s *LocalRecordStore) Insert(ctx context.Context, session domain.Session) (domain.Session, error) {
	err := s.cache.Mutate(ctx, func(doc *domain.CacheDocument) error {
		doc.History = domain.Upsert(doc.History, session)
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Update replaces the entry with the same id; a missing entry is added so nothing is lost.
func (s *LocalRecordStore) Update(ctx context.Context, session domain.Session) error {
	return s.cache.Mutate(ctx, func(doc *domain.CacheDocument) error {
		doc.History = domain.Upsert(doc.History, session)
		return nil
	})
}

func (s *LocalRecordStore) Delete(ctx context.Context, id string) error {
	return s.cache.Mutate(ctx, func(doc *domain.CacheDocument) error {
		history, found := domain.Remove(doc.History, id)
		if !found {
			return fmt.Errorf("fast %s: %w", id, apperrors.ErrNotFound)
		}
		doc.History = history
		return nil
	})
}

// RemoteRecordStore writes through to the remote store and degrades to the local cache
// when the remote is unreachable. A record the remote rejects is returned as an error, and
// Update reports ErrNotFound so the caller can insert the row again.
type RemoteRecordStore struct {
	remote   fastingout.RemoteStore
	local    *LocalRecordStore
	identity identitydto.Identity
	logger   *slog.Logger
}

func (s *RemoteRecordStore) List(ctx context.Context) ([]domain.Session, error) {
	sessions, err := s.remote.List(ctx, s.identity)
	if err != nil {
		s.logger.Warn("remote list failed, using local cache", "user", s.identity.UserID, "err", err)
		return s.local.List(ctx)
	}
	domain.SortNewestFirst(sessions)
	return sessions, nil
}

func (s *RemoteRecordStore) Insert(ctx context.Context, session domain.Session) (domain.Session, error) {
	saved, err := s.remote.Insert(ctx, s.identity, session)
	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, apperrors.ErrInvalidInput):
		s.logger.Error("remote rejected record", "id", session.ID, "err", err)
		return domain.Session{}, err
	}
	s.logger.Warn("remote insert failed, writing to local cache", "id", session.ID, "err", err)
	return s.local.Insert(ctx, session)
}

func (s *RemoteRecordStore) Update(ctx context.Context, session domain.Session) error {
	err := s.remote.Update(ctx, s.identity, session)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperrors.ErrNotFound):
		return err
	case errors.Is(err, apperrors.ErrInvalidInput):
		s.logger.Error("remote rejected record", "id", session.ID, "err", err)
		return err
	}
	s.logger.Warn("remote update failed, writing to local cache", "id", session.ID, "err", err)
	return s.local.Update(ctx, session)
}

func (s *RemoteRecordStore) Delete(ctx context.Context, id string) error {
	err := s.remote.Delete(ctx, s.identity, id)
	if err == nil {
		// A copy may also sit in the local cache from an earlier fallback write.
		if lerr := s.local.Delete(ctx, id); lerr != nil && !errors.Is(lerr, apperrors.ErrNotFound) {
			s.logger.Warn("local delete after remote delete failed", "id", id, "err", lerr)
		}
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		s.logger.Warn("remote delete failed, deleting from local cache", "id", id, "err", err)
	}
	return s.local.Delete(ctx, id)
}
