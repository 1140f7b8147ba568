package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fasttrack/internal/modules/fasting/domain"
	fastingout "fasttrack/internal/modules/fasting/port/out"
	identitydto "fasttrack/internal/modules/identity/dto"
	"fasttrack/internal/platform/clock"
	apperrors "fasttrack/internal/platform/errors"
	"fasttrack/internal/platform/id"
)

type EngineDeps struct {
	Clock        clock.Clock
	IDs          id.Generator
	Cache        fastingout.LocalCache
	Remote       fastingout.RemoteStore
	Journal      fastingout.Journal
	Prefs        fastingout.ProtocolPreference
	Logger       *slog.Logger
	SyncInterval time.Duration
}

// Status is a snapshot of the engine after a tick.
type Status struct {
	State      domain.State
	Protocol   domain.Protocol
	Active     *domain.Session
	Progress   domain.Progress
	Hydrated   bool
	Identified bool
	Notice     string
	Finished   *domain.Session
}

// Engine owns the authoritative fasting state. The local cache, the record store and the
// sync driver are mirrors it writes to; it never reads them mid-operation.
type Engine struct {
	mu sync.Mutex
	// pushMu serialises remote writes of the live session; taken before mu.
	pushMu sync.Mutex

	clock        clock.Clock
	ids          id.Generator
	cache        fastingout.LocalCache
	remote       fastingout.RemoteStore
	journal      fastingout.Journal
	prefs        fastingout.ProtocolPreference
	logger       *slog.Logger
	syncInterval time.Duration

	timer     *domain.Timer
	identity  identitydto.Identity
	store     fastingout.RecordStore
	history   []domain.Session
	remoteIDs map[string]string
	hydrated  bool
	notice    string
	driver    *SyncDriver

	baseCtx context.Context
	cancel  context.CancelFunc
}

func NewEngine(deps EngineDeps) *Engine {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.SyncInterval <= 0 {
		deps.SyncInterval = 30 * time.Second
	}
	protocol := domain.DefaultProtocol
	if deps.Prefs != nil {
		if p := domain.ParseProtocol(deps.Prefs.Protocol()); p != "" {
			protocol = p
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		clock:        deps.Clock,
		ids:          deps.IDs,
		cache:        deps.Cache,
		remote:       deps.Remote,
		journal:      deps.Journal,
		prefs:        deps.Prefs,
		logger:       deps.Logger,
		syncInterval: deps.SyncInterval,
		timer:        domain.NewTimer(protocol),
		store:        NewRecordStore(identitydto.Identity{}, deps.Remote, deps.Cache, deps.Logger),
		remoteIDs:    map[string]string{},
		baseCtx:      ctx,
		cancel:       cancel,
	}
}

func (e *Engine) identifiedLocked() bool {
	return e.identity.Present() && e.remote != nil
}

func (e *Engine) SelectProtocol(_ context.Context, p domain.Protocol) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.timer.SelectProtocol(p); err != nil {
		return err
	}
	if e.prefs != nil {
		if err := e.prefs.SetProtocol(p.String()); err != nil {
			e.logger.Warn("persist protocol preference failed", "err", err)
		}
	}
	return nil
}

func (e *Engine) Start(ctx context.Context) (domain.Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.hydrated {
		return domain.Session{}, apperrors.ErrNotHydrated
	}
	session, err := e.timer.Start(e.ids.New(), e.clock.Now())
	if err != nil {
		return domain.Session{}, err
	}
	e.notice = ""
	e.writeMarkersLocked(ctx, domain.MarkersFor(session, ""))
	e.startDriverLocked()
	e.logger.Info("fast started", "id", session.ID, "protocol", session.Protocol, "target_hours", session.TargetDuration)
	return session, nil
}

// Tick advances the timer. When the target is reached the natural-completion write runs
// before Tick returns, and finished is non-nil exactly once.
func (e *Engine) Tick(ctx context.Context) (domain.Progress, *domain.Session, error) {
	e.mu.Lock()
	progress, finished, done := e.timer.Tick(e.clock.Now())
	if !done {
		e.mu.Unlock()
		return progress, nil, nil
	}
	pending := e.leaveActiveLocked(ctx)
	e.mu.Unlock()

	saved, _, err := e.finish(ctx, finished, pending)
	if err != nil {
		return progress, &saved, err
	}
	return progress, &saved, nil
}

func (e *Engine) Stop(ctx context.Context) (domain.Session, string, error) {
	e.mu.Lock()
	finished, err := e.timer.Stop(e.clock.Now())
	if err != nil {
		e.mu.Unlock()
		return domain.Session{}, "", err
	}
	pending := e.leaveActiveLocked(ctx)
	e.mu.Unlock()

	return e.finish(ctx, finished, pending)
}

// terminal captures what the terminal write needs once the timer has left Active.
type terminal struct {
	driver *SyncDriver
	store  fastingout.RecordStore
}

func (e *Engine) leaveActiveLocked(ctx context.Context) terminal {
	t := terminal{driver: e.driver, store: e.store}
	e.driver = nil
	e.writeMarkersLocked(ctx, domain.ActiveMarkers{})
	return t
}

// finish emits a terminal record. The in-flight push is cancelled and awaited first so the
// terminal write is the last one to reach the store.
func (e *Engine) finish(ctx context.Context, record domain.Session, t terminal) (domain.Session, string, error) {
	t.driver.Stop()
	e.pushMu.Lock()
	defer e.pushMu.Unlock()

	e.mu.Lock()
	remoteID := e.remoteIDs[record.ID]
	delete(e.remoteIDs, record.ID)
	e.mu.Unlock()

	saved := record
	var err error
	if remoteID != "" {
		saved.ID = remoteID
		err = t.store.Update(ctx, saved)
	}
	if remoteID == "" || errors.Is(err, apperrors.ErrNotFound) {
		var inserted domain.Session
		if inserted, err = t.store.Insert(ctx, saved); err == nil {
			saved = inserted
		}
	}
	if err != nil {
		e.logger.Error("terminal write failed", "id", record.ID, "err", err)
	}

	e.mu.Lock()
	e.history = domain.Upsert(e.history, saved)
	e.mu.Unlock()

	path := e.writeJournal(ctx, saved)
	e.logger.Info("fast finished", "id", saved.ID, "completed", saved.Completed, "actual_hours", saved.ActualHours())
	return saved, path, err
}

func (e *Engine) AddManual(ctx context.Context, entry domain.ManualEntry) (domain.Session, error) {
	session, err := entry.Build(e.ids.New())
	if err != nil {
		return domain.Session{}, err
	}
	e.mu.Lock()
	store := e.store
	e.mu.Unlock()

	saved, err := store.Insert(ctx, session)
	if err != nil {
		return domain.Session{}, err
	}
	e.mu.Lock()
	e.history = domain.Upsert(e.history, saved)
	e.mu.Unlock()
	e.writeJournal(ctx, saved)
	return saved, nil
}

func (e *Engine) History() []domain.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]domain.Session(nil), e.history...)
}

// Delete removes a finished record. The live session cannot be deleted.
func (e *Engine) Delete(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	if active, ok := e.timer.Active(); ok && active.ID == sessionID {
		e.mu.Unlock()
		return fmt.Errorf("%w: stop the running fast before deleting it", apperrors.ErrInvalidInput)
	}
	store := e.store
	e.mu.Unlock()

	if err := store.Delete(ctx, sessionID); err != nil {
		return err
	}
	e.mu.Lock()
	e.history, _ = domain.Remove(e.history, sessionID)
	e.mu.Unlock()
	return nil
}

func (e *Engine) Status(ctx context.Context) (Status, error) {
	_, finished, err := e.Tick(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		State:      e.timer.State(),
		Protocol:   e.timer.Protocol(),
		Hydrated:   e.hydrated,
		Identified: e.identifiedLocked(),
		Notice:     e.notice,
		Finished:   finished,
	}
	if active, ok := e.timer.Active(); ok {
		st.Active = &active
		st.Progress = domain.ComputeProgress(active.StartTime, active.TargetDuration, e.clock.Now())
	}
	return st, err
}

// SetIdentity runs the identity-change routine: tear down the sync driver, switch the
// store strategy, migrate local history when signing in, then hydrate.
func (e *Engine) SetIdentity(ctx context.Context, identity identitydto.Identity) error {
	e.mu.Lock()
	if e.hydrated && e.identity.Same(identity) {
		e.mu.Unlock()
		return nil
	}
	driver := e.driver
	e.driver = nil
	e.identity = identity
	e.store = NewRecordStore(identity, e.remote, e.cache, e.logger)
	e.hydrated = false
	e.notice = ""
	e.mu.Unlock()

	driver.Stop()

	if identity.Present() && e.remote != nil {
		if _, err := NewMigrator(e.cache, e.remote, e.logger).Migrate(ctx, identity); err != nil {
			e.logger.Warn("migration failed", "user", identity.UserID, "err", err)
		}
	}
	return e.Hydrate(ctx)
}

func (e *Engine) Migrate(ctx context.Context) (MigrationResult, error) {
	e.mu.Lock()
	identity := e.identity
	e.mu.Unlock()

	result, err := NewMigrator(e.cache, e.remote, e.logger).Migrate(ctx, identity)
	if err != nil {
		return result, err
	}
	if result.Migrated > 0 {
		if err := e.Hydrate(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// SyncNow performs one push synchronously.
func (e *Engine) SyncNow(ctx context.Context) (sessionID, remoteID string, err error) {
	e.mu.Lock()
	active, ok := e.timer.Active()
	identified := e.identifiedLocked()
	e.mu.Unlock()
	if !identified {
		return "", "", apperrors.ErrUnauthenticated
	}
	if !ok {
		return "", "", apperrors.ErrNoActiveSession
	}
	if err := e.push(ctx); err != nil {
		return active.ID, "", err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return active.ID, e.remoteIDs[active.ID], nil
}

func (e *Engine) push(ctx context.Context) error {
	e.pushMu.Lock()
	defer e.pushMu.Unlock()

	e.mu.Lock()
	active, ok := e.timer.Active()
	identity := e.identity
	identified := e.identifiedLocked()
	remoteID := e.remoteIDs[active.ID]
	e.mu.Unlock()
	if !ok || !identified {
		return nil
	}

	sessionID := active.ID
	if remoteID != "" {
		active.ID = remoteID
		err := e.remote.Update(ctx, identity, active)
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		e.logger.Warn("remote row missing, inserting it again", "id", sessionID, "remote_id", remoteID)
	}
	saved, err := e.remote.Insert(ctx, identity, active)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.remoteIDs[sessionID] = saved.ID
	if current, ok := e.timer.Active(); ok && current.ID == sessionID {
		e.writeMarkersLocked(ctx, domain.MarkersFor(current, saved.ID))
	}
	return nil
}

func (e *Engine) startDriverLocked() {
	if e.driver != nil || !e.identifiedLocked() {
		return
	}
	if _, ok := e.timer.Active(); !ok {
		return
	}
	e.driver = StartSyncDriver(e.baseCtx, e.syncInterval, e.push, e.logger)
}

func (e *Engine) writeMarkersLocked(ctx context.Context, markers domain.ActiveMarkers) {
	err := e.cache.Mutate(ctx, func(doc *domain.CacheDocument) error {
		doc.Markers = markers
		return nil
	})
	if err != nil {
		e.logger.Warn("write active markers failed", "err", err)
	}
}

func (e *Engine) writeJournal(ctx context.Context, s domain.Session) string {
	if e.journal == nil {
		return ""
	}
	path, err := e.journal.Write(ctx, s)
	if err != nil {
		e.logger.Warn("journal write failed", "id", s.ID, "err", err)
		return ""
	}
	return path
}

// Export writes every finished session to the journal.
func (e *Engine) Export(ctx context.Context) ([]string, error) {
	if e.journal == nil {
		return nil, errors.New("journal is not configured")
	}
	var paths []string
	for _, s := range e.History() {
		if s.InProgress() {
			continue
		}
		path, err := e.journal.Write(ctx, s)
		if err != nil {
			return paths, fmt.Errorf("export %s: %w", s.ID, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Close tears down the sync driver. The engine must not be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	driver := e.driver
	e.driver = nil
	e.mu.Unlock()
	driver.Stop()
	e.cancel()
}
