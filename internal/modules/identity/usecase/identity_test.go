package usecase_test

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	identityout "fasttrack/internal/modules/identity/adapter/out"
	identitydto "fasttrack/internal/modules/identity/dto"
	"fasttrack/internal/modules/identity/service"
	"fasttrack/internal/modules/identity/usecase"
	"fasttrack/internal/platform/clock"
	apperrors "fasttrack/internal/platform/errors"
	"fasttrack/internal/platform/logging"
)

type recorder struct {
	mu   sync.Mutex
	seen []identitydto.Identity
}

func (r *recorder) add(id identitydto.Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, id)
}

func (r *recorder) snapshot() []identitydto.Identity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]identitydto.Identity(nil), r.seen...)
}

func newInteractor(path string) *usecase.Interactor {
	clk := clock.Fixed(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	svc := service.NewIdentityService(clk, identityout.NewFileCredentialStore(path), logging.Discard())
	return usecase.NewInteractor(svc).(*usecase.Interactor)
}

func TestSignInSignOutNotifiesSubscribers(t *testing.T) {
	t.Parallel()
	uc := newInteractor(filepath.Join(t.TempDir(), "credentials.json"))
	rec := &recorder{}
	cancel := uc.Subscribe(rec.add)
	defer cancel()

	anon, err := uc.Current(context.Background())
	if err != nil || anon.Present() {
		t.Fatalf("expected anonymous start, got %+v %v", anon, err)
	}

	id, err := uc.SignIn(context.Background(), identitydto.SignInInput{UserID: "u1", Email: "a@b.c", Token: "tok"})
	if err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if id.UserID != "u1" || id.Token != "tok" {
		t.Fatalf("unexpected identity %+v", id)
	}
	if err := uc.SignOut(context.Background()); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	cur, err := uc.Current(context.Background())
	if err != nil || cur.Present() {
		t.Fatalf("expected anonymous after sign out, got %+v %v", cur, err)
	}

	seen := rec.snapshot()
	if len(seen) != 2 || seen[0].UserID != "u1" || seen[1].Present() {
		t.Fatalf("expected sign-in then sign-out notifications, got %+v", seen)
	}
}

func TestSignInValidatesInput(t *testing.T) {
	t.Parallel()
	uc := newInteractor(filepath.Join(t.TempDir(), "credentials.json"))
	for _, in := range []identitydto.SignInInput{{}, {UserID: "a b"}, {UserID: "u", Email: "nope"}} {
		if _, err := uc.SignIn(context.Background(), in); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Fatalf("input %+v: expected invalid input, got %v", in, err)
		}
	}
}

func TestWatchPicksUpChangesFromAnotherProcess(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "credentials.json")
	watcher := newInteractor(path)
	other := newInteractor(path)

	changed := make(chan identitydto.Identity, 4)
	cancelSub := watcher.Subscribe(func(id identitydto.Identity) { changed <- id })
	defer cancelSub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		watcher.Watch(ctx, 5*time.Millisecond)
		close(done)
	}()

	if _, err := other.SignIn(context.Background(), identitydto.SignInInput{UserID: "u2"}); err != nil {
		t.Fatalf("sign in elsewhere: %v", err)
	}
	select {
	case id := <-changed:
		if id.UserID != "u2" {
			t.Fatalf("unexpected identity %+v", id)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("watch did not observe the new credentials")
	}
	cancel()
	<-done
}
