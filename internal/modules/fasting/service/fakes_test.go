package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"fasttrack/internal/modules/fasting/domain"
	"fasttrack/internal/modules/fasting/service"
	identitydto "fasttrack/internal/modules/identity/dto"
	apperrors "fasttrack/internal/platform/errors"
)

var t0 = time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)

var alice = identitydto.Identity{UserID: "alice", Email: "alice@example.com", Token: "tok"}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fakeID struct {
	mu sync.Mutex
	n  int
}

func (f *fakeID) New() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return fmt.Sprintf("local-%d", f.n)
}

type memCache struct {
	mu  sync.Mutex
	doc domain.CacheDocument
}

func (c *memCache) Read(context.Context) (domain.CacheDocument, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyDoc(), nil
}

func (c *memCache) Mutate(_ context.Context, fn func(doc *domain.CacheDocument) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	doc := c.copyDoc()
	if err := fn(&doc); err != nil {
		return err
	}
	c.doc = doc
	return nil
}

func (c *memCache) copyDoc() domain.CacheDocument {
	doc := c.doc
	doc.History = append([]domain.Session(nil), c.doc.History...)
	return doc
}

func (c *memCache) snapshot() domain.CacheDocument {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.copyDoc()
}

// fakeRemote is an in-memory remote table keyed by user then row id.
type fakeRemote struct {
	mu        sync.Mutex
	rows      map[string]map[string]domain.Session
	seq       int
	inserts   int
	updates   []string
	down      bool
	failIDs   map[string]bool
	rejectIDs map[string]bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		rows:      map[string]map[string]domain.Session{},
		failIDs:   map[string]bool{},
		rejectIDs: map[string]bool{},
	}
}

var errRemoteDown = errors.New("remote unavailable")

func (r *fakeRemote) List(_ context.Context, identity identitydto.Identity) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return nil, errRemoteDown
	}
	out := []domain.Session{}
	for _, s := range r.rows[identity.UserID] {
		out = append(out, s)
	}
	domain.SortNewestFirst(out)
	return out, nil
}

func (r *fakeRemote) Insert(_ context.Context, identity identitydto.Identity, s domain.Session) (domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down || r.failIDs[s.ID] {
		return domain.Session{}, errRemoteDown
	}
	if r.rejectIDs[s.ID] {
		return domain.Session{}, fmt.Errorf("%w: start_time is required", apperrors.ErrInvalidInput)
	}
	r.seq++
	r.inserts++
	s.ID = fmt.Sprintf("remote-%d", r.seq)
	r.put(identity.UserID, s)
	return s, nil
}

func (r *fakeRemote) Update(_ context.Context, identity identitydto.Identity, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return errRemoteDown
	}
	if _, ok := r.rows[identity.UserID][s.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.updates = append(r.updates, s.ID)
	r.put(identity.UserID, s)
	return nil
}

func (r *fakeRemote) Delete(_ context.Context, identity identitydto.Identity, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down {
		return errRemoteDown
	}
	if _, ok := r.rows[identity.UserID][id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(r.rows[identity.UserID], id)
	return nil
}

func (r *fakeRemote) put(user string, s domain.Session) {
	if r.rows[user] == nil {
		r.rows[user] = map[string]domain.Session{}
	}
	r.rows[user][s.ID] = s
}

func (r *fakeRemote) seed(user string, s domain.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.put(user, s)
}

func (r *fakeRemote) row(user, id string) (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[user][id]
	return s, ok
}

func (r *fakeRemote) count(user string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows[user])
}

func (r *fakeRemote) setDown(down bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down = down
}

type fakeJournal struct {
	mu      sync.Mutex
	written []string
}

func (j *fakeJournal) Write(_ context.Context, s domain.Session) (string, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.written = append(j.written, s.ID)
	return "journal/" + s.ID + ".md", nil
}

type fakePrefs struct {
	protocol string
}

func (p *fakePrefs) Protocol() string { return p.protocol }

func (p *fakePrefs) SetProtocol(protocol string) error {
	p.protocol = protocol
	return nil
}

type harness struct {
	clock   *fakeClock
	cache   *memCache
	remote  *fakeRemote
	journal *fakeJournal
	prefs   *fakePrefs
	engine  *service.Engine
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessOn(t, &memCache{}, newFakeRemote())
}

// newHarnessOn builds an engine over an existing cache and remote, as a second device or
// a restarted process would see them.
func newHarnessOn(t *testing.T, cache *memCache, remote *fakeRemote) *harness {
	t.Helper()
	h := &harness{
		clock:   &fakeClock{now: t0},
		cache:   cache,
		remote:  remote,
		journal: &fakeJournal{},
		prefs:   &fakePrefs{},
	}
	h.engine = service.NewEngine(service.EngineDeps{
		Clock:        h.clock,
		IDs:          &fakeID{},
		Cache:        h.cache,
		Remote:       h.remote,
		Journal:      h.journal,
		Prefs:        h.prefs,
		Logger:       discardLogger(),
		SyncInterval: time.Hour,
	})
	t.Cleanup(h.engine.Close)
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func hours(h float64) *float64 {
	return &h
}
