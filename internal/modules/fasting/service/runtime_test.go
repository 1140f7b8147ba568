package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fasttrack/internal/modules/fasting/service"
	identitydto "fasttrack/internal/modules/identity/dto"
)

type fakeIdentitySource struct {
	mu       sync.Mutex
	current  identitydto.Identity
	listener func(identitydto.Identity)
}

func (s *fakeIdentitySource) Current(context.Context) (identitydto.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, nil
}

func (s *fakeIdentitySource) Subscribe(fn func(identitydto.Identity)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listener = nil
	}
}

func (s *fakeIdentitySource) Watch(ctx context.Context, _ time.Duration) {
	<-ctx.Done()
}

func (s *fakeIdentitySource) emit(id identitydto.Identity) {
	s.mu.Lock()
	s.current = id
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(id)
	}
}

func TestRuntimeHydratesAndFollowsIdentity(t *testing.T) {
	h := newHarness(t)
	src := &fakeIdentitySource{}
	rt := service.NewRuntime(h.engine, src, 10*time.Millisecond, time.Hour, discardLogger())
	var ticks atomic.Int32
	rt.OnStatus(func(service.Status) { ticks.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- rt.Run(ctx) }()

	status := func() service.Status {
		st, _ := h.engine.Status(context.Background())
		return st
	}
	waitFor(t, "hydration", func() bool { return status().Hydrated })
	waitFor(t, "subscription", func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.listener != nil
	})

	src.emit(alice)
	waitFor(t, "sign in", func() bool { st := status(); return st.Identified && st.Hydrated })
	waitFor(t, "ticks", func() bool { return ticks.Load() > 0 })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("runtime did not stop")
	}
}
