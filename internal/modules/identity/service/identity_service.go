package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fasttrack/internal/modules/identity/domain"
	identityout "fasttrack/internal/modules/identity/port/out"
	"fasttrack/internal/platform/clock"
)

// IdentityService tracks the current user and notifies subscribers when it changes,
// including changes made by another process through the credential store.
type IdentityService struct {
	clock  clock.Clock
	store  identityout.CredentialStore
	logger *slog.Logger

	mu        sync.Mutex
	last      domain.Credentials
	listeners map[int]func(domain.Credentials)
	nextID    int
}

func NewIdentityService(clock clock.Clock, store identityout.CredentialStore, logger *slog.Logger) *IdentityService {
	return &IdentityService{clock: clock, store: store, logger: logger, listeners: map[int]func(domain.Credentials){}}
}

func (s *IdentityService) Current(ctx context.Context) (domain.Credentials, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return domain.Credentials{}, err
	}
	s.observe(creds)
	return creds, nil
}

func (s *IdentityService) SignIn(ctx context.Context, creds domain.Credentials) (domain.Credentials, error) {
	if err := creds.Validate(); err != nil {
		return domain.Credentials{}, err
	}
	creds.SignedInAt = s.clock.Now()
	if err := s.store.Save(ctx, creds); err != nil {
		return domain.Credentials{}, err
	}
	s.logger.Info("signed in", "user", creds.UserID)
	s.observe(creds)
	return creds, nil
}

func (s *IdentityService) SignOut(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.logger.Info("signed out")
	s.observe(domain.Credentials{})
	return nil
}

func (s *IdentityService) Subscribe(fn func(domain.Credentials)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Watch polls the credential store until ctx is done.
func (s *IdentityService) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Current(ctx); err != nil {
				s.logger.Warn("poll credentials failed", "err", err)
			}
		}
	}
}

// observe records creds and notifies listeners when they differ from the last seen value.
func (s *IdentityService) observe(creds domain.Credentials) {
	s.mu.Lock()
	if s.last.Equal(creds) {
		s.mu.Unlock()
		return
	}
	s.last = creds
	listeners := make([]func(domain.Credentials), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(creds)
	}
}
