package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fasttrack/internal/modules/fasting/domain"
	identitydto "fasttrack/internal/modules/identity/dto"
	apperrors "fasttrack/internal/platform/errors"
)

func TestStartRequiresHydration(t *testing.T) {
	h := newHarness(t)
	if _, err := h.engine.Start(context.Background()); !errors.Is(err, apperrors.ErrNotHydrated) {
		t.Fatalf("expected ErrNotHydrated, got %v", err)
	}
}

func TestAnonymousStopRecordsLocally(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		t.Fatalf("set identity: %v", err)
	}

	started, err := h.engine.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if m := h.cache.snapshot().Markers; !m.IsFasting || m.SessionID != started.ID {
		t.Fatalf("expected active markers for %s, got %+v", started.ID, m)
	}

	h.clock.Advance(2 * time.Hour)
	saved, path, err := h.engine.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if saved.ID != started.ID || saved.Completed || saved.ActualHours() != 2 {
		t.Fatalf("unexpected stopped session: %+v", saved)
	}
	if path == "" {
		t.Fatalf("expected journal path")
	}

	doc := h.cache.snapshot()
	if doc.Markers.IsFasting {
		t.Fatalf("markers not cleared: %+v", doc.Markers)
	}
	if len(doc.History) != 1 || doc.History[0].ID != started.ID {
		t.Fatalf("expected record in local history, got %+v", doc.History)
	}
	if h.remote.inserts != 0 {
		t.Fatalf("anonymous user must not touch the remote store")
	}
	if _, _, err := h.engine.Stop(ctx); !errors.Is(err, apperrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession on second stop, got %v", err)
	}
}

func TestNaturalCompletionHappensOnce(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if err := h.engine.SelectProtocol(ctx, domain.Protocol18x6); err != nil {
		t.Fatalf("select protocol: %v", err)
	}
	if h.prefs.protocol != "18:6" {
		t.Fatalf("expected protocol preference to persist, got %q", h.prefs.protocol)
	}
	if _, err := h.engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.engine.SelectProtocol(ctx, domain.Protocol20x4); !errors.Is(err, apperrors.ErrActiveSessionExists) {
		t.Fatalf("expected protocol change to be rejected while active, got %v", err)
	}

	h.clock.Advance(18 * time.Hour)
	st, err := h.engine.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Finished == nil || !st.Finished.Completed {
		t.Fatalf("expected completed fast, got %+v", st.Finished)
	}
	if st.State != domain.StateIdle || st.Active != nil {
		t.Fatalf("expected idle after completion, got %v", st.State)
	}

	st, err = h.engine.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Finished != nil {
		t.Fatalf("completion reported twice")
	}
	if got := len(h.engine.History()); got != 1 {
		t.Fatalf("expected one record, got %d", got)
	}
	if got := len(h.cache.snapshot().History); got != 1 {
		t.Fatalf("expected one cached record, got %d", got)
	}
}

func TestHydrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	start := t0.Add(-2 * time.Hour)
	h.cache.doc = domain.CacheDocument{
		Markers: domain.ActiveMarkers{IsFasting: true, SessionID: "s1", StartTime: &start, Protocol: domain.Protocol16x8},
	}
	if err := h.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	first, _ := h.engine.Status(ctx)
	if err := h.engine.Hydrate(ctx); err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	second, _ := h.engine.Status(ctx)

	if first.Active == nil || second.Active == nil {
		t.Fatalf("expected adopted session, got %+v / %+v", first.Active, second.Active)
	}
	if first.Active.ID != "s1" || second.Active.ID != "s1" || !second.Active.StartTime.Equal(start) {
		t.Fatalf("hydration changed the active session: %+v -> %+v", first.Active, second.Active)
	}
	if second.Progress.Elapsed != 2*time.Hour {
		t.Fatalf("expected 2h elapsed, got %v", second.Progress.Elapsed)
	}
	if m := h.cache.snapshot().Markers; m.SessionID != "s1" {
		t.Fatalf("markers rewritten with another id: %+v", m)
	}
}

func TestHydrateAssignsIDToLegacyMarkers(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	start := t0.Add(-time.Hour)
	h.cache.doc = domain.CacheDocument{
		Markers: domain.ActiveMarkers{IsFasting: true, StartTime: &start},
	}
	if err := h.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	st, _ := h.engine.Status(ctx)
	if st.Active == nil || st.Active.ID != "local-1" || st.Active.Protocol != domain.DefaultProtocol {
		t.Fatalf("unexpected adopted session: %+v", st.Active)
	}
}

func TestSignedInResumesRemoteFast(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	end := t0.Add(-30 * time.Hour)
	h.remote.seed("alice", domain.Session{
		ID: "r-1", Protocol: domain.Protocol16x8, StartTime: t0.Add(-46 * time.Hour),
		EndTime: &end, TargetDuration: 16, ActualDuration: hours(16), Completed: true,
	})
	h.remote.seed("alice", domain.Session{
		ID: "r-9", Protocol: domain.Protocol20x4, StartTime: t0.Add(-3 * time.Hour), TargetDuration: 20,
	})

	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	st, err := h.engine.Status(ctx)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.Active == nil || st.Active.ID != "r-9" || st.Protocol != domain.Protocol20x4 {
		t.Fatalf("expected remote fast adopted, got %+v", st.Active)
	}
	if !strings.Contains(st.Notice, "Resumed your 20:4 fast") {
		t.Fatalf("expected resume notice, got %q", st.Notice)
	}
	if got := h.engine.History(); len(got) != 1 || got[0].ID != "r-1" {
		t.Fatalf("history must exclude the live fast, got %+v", got)
	}

	h.clock.Advance(time.Hour)
	saved, _, err := h.engine.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if saved.ID != "r-9" {
		t.Fatalf("terminal write must target the remote row, got %s", saved.ID)
	}
	row, ok := h.remote.row("alice", "r-9")
	if !ok || row.EndTime == nil || row.ActualHours() != 4 {
		t.Fatalf("remote row not finished: %+v", row)
	}
	if h.remote.inserts != 0 {
		t.Fatalf("expected no inserts, got %d", h.remote.inserts)
	}
}

func TestSyncDriverInsertsThenUpdates(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	started, err := h.engine.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "first push", func() bool { return h.remote.count("alice") == 1 })

	sessionID, remoteID, err := h.engine.SyncNow(ctx)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if sessionID != started.ID || remoteID != "remote-1" {
		t.Fatalf("unexpected sync result %s -> %s", sessionID, remoteID)
	}
	if m := h.cache.snapshot().Markers; m.RemoteID != "remote-1" {
		t.Fatalf("remote id not recorded in markers: %+v", m)
	}
	row, _ := h.remote.row("alice", "remote-1")
	if !row.InProgress() {
		t.Fatalf("pushed row must stay in progress: %+v", row)
	}

	h.clock.Advance(5 * time.Hour)
	saved, _, err := h.engine.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if saved.ID != "remote-1" {
		t.Fatalf("expected terminal update of remote-1, got %s", saved.ID)
	}
	if h.remote.inserts != 1 || h.remote.count("alice") != 1 {
		t.Fatalf("expected a single remote row, got %d inserts", h.remote.inserts)
	}
	row, _ = h.remote.row("alice", "remote-1")
	if row.InProgress() || row.ActualHours() != 5 {
		t.Fatalf("remote row not finished: %+v", row)
	}
}

func TestStopWithRemoteDownKeepsRecordLocally(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if _, err := h.engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "first push", func() bool { return h.remote.count("alice") == 1 })

	h.remote.setDown(true)
	h.clock.Advance(time.Hour)
	saved, _, err := h.engine.Stop(ctx)
	if err != nil {
		t.Fatalf("stop should fall back silently, got %v", err)
	}
	doc := h.cache.snapshot()
	if len(doc.History) != 1 || doc.History[0].ID != saved.ID {
		t.Fatalf("expected fallback record in local cache, got %+v", doc.History)
	}
}

func TestAddManualFallsBackToLocal(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	h.remote.setDown(true)

	saved, err := h.engine.AddManual(ctx, domain.ManualEntry{StartTime: t0.Add(-24 * time.Hour), Completed: true})
	if err != nil {
		t.Fatalf("add manual: %v", err)
	}
	if !saved.ManuallyAdded || saved.ActualHours() != 16 {
		t.Fatalf("unexpected manual record: %+v", saved)
	}
	if doc := h.cache.snapshot(); len(doc.History) != 1 {
		t.Fatalf("expected local fallback write, got %+v", doc.History)
	}
	if got := h.engine.History(); len(got) != 1 {
		t.Fatalf("expected in-memory history to include the record, got %d", len(got))
	}
}

func TestSignInMigratesAndKeepsFailures(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	for i, id := range []string{"a", "b", "c"} {
		start := t0.Add(-time.Duration(24*(i+1)) * time.Hour)
		s, _ := domain.ManualEntry{StartTime: start, Completed: true}.Build(id)
		h.cache.doc.History = append(h.cache.doc.History, s)
	}
	h.remote.failIDs["b"] = true

	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if doc := h.cache.snapshot(); len(doc.History) != 1 || doc.History[0].ID != "b" {
		t.Fatalf("expected only the failed record to remain, got %+v", doc.History)
	}
	if got := h.remote.count("alice"); got != 2 {
		t.Fatalf("expected 2 migrated rows, got %d", got)
	}

	h.remote.mu.Lock()
	delete(h.remote.failIDs, "b")
	h.remote.mu.Unlock()

	res, err := h.engine.Migrate(ctx)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if res.Migrated != 1 || res.Failed != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := len(h.engine.History()); got != 3 {
		t.Fatalf("expected 3 records after retry, got %d", got)
	}
}

func TestMigrateRequiresIdentity(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if _, err := h.engine.Migrate(ctx); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if _, _, err := h.engine.SyncNow(ctx); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated from sync, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	saved, err := h.engine.AddManual(ctx, domain.ManualEntry{StartTime: t0.Add(-30 * time.Hour), Duration: "12:30"})
	if err != nil {
		t.Fatalf("add manual: %v", err)
	}
	active, err := h.engine.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := h.engine.Delete(ctx, active.ID); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected live fast deletion to be rejected, got %v", err)
	}
	if err := h.engine.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := h.remote.row("alice", saved.ID); ok {
		t.Fatalf("remote row still present")
	}
	if got := h.engine.History(); len(got) != 0 {
		t.Fatalf("expected empty history, got %+v", got)
	}
	if err := h.engine.Delete(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSignOutSwitchesToLocalHistory(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if _, err := h.engine.AddManual(ctx, domain.ManualEntry{StartTime: t0.Add(-20 * time.Hour), Completed: true}); err != nil {
		t.Fatalf("add manual: %v", err)
	}
	if err := h.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		t.Fatalf("sign out: %v", err)
	}
	st, _ := h.engine.Status(ctx)
	if st.Identified || !st.Hydrated {
		t.Fatalf("expected anonymous hydrated engine, got %+v", st)
	}
	if got := h.engine.History(); len(got) != 0 {
		t.Fatalf("remote history leaked into anonymous view: %+v", got)
	}
}

func TestExportWritesEveryRecord(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	for i := 1; i <= 2; i++ {
		if _, err := h.engine.AddManual(ctx, domain.ManualEntry{StartTime: t0.Add(-time.Duration(24*i) * time.Hour), Completed: true}); err != nil {
			t.Fatalf("add manual: %v", err)
		}
	}
	paths, err := h.engine.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 exported notes, got %v", paths)
	}
}

func TestHydrateDropsMarkersForFastFinishedElsewhere(t *testing.T) {
	ctx := context.Background()
	laptop := newHarness(t)
	if err := laptop.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("laptop set identity: %v", err)
	}
	started, err := laptop.engine.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "laptop push", func() bool { return laptop.cache.snapshot().Markers.RemoteID == "remote-1" })
	laptop.engine.Close()

	phone := newHarnessOn(t, &memCache{}, laptop.remote)
	if err := phone.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("phone set identity: %v", err)
	}
	st, _ := phone.engine.Status(ctx)
	if st.Active == nil || st.Active.ID != "remote-1" {
		t.Fatalf("phone should resume remote-1, got %+v", st.Active)
	}
	phone.clock.Advance(3 * time.Hour)
	if _, _, err := phone.engine.Stop(ctx); err != nil {
		t.Fatalf("phone stop: %v", err)
	}

	reopened := newHarnessOn(t, laptop.cache, laptop.remote)
	if m := reopened.cache.snapshot().Markers; !m.IsFasting || m.SessionID != started.ID {
		t.Fatalf("laptop markers should still name the old fast, got %+v", m)
	}
	if err := reopened.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("reopened set identity: %v", err)
	}
	st, _ = reopened.engine.Status(ctx)
	if st.Active != nil || st.State != domain.StateIdle {
		t.Fatalf("fast finished on the phone came back as active: %+v", st.Active)
	}
	if m := reopened.cache.snapshot().Markers; m.IsFasting || m.RemoteID != "" {
		t.Fatalf("stale markers not cleared: %+v", m)
	}
	row, _ := laptop.remote.row("alice", "remote-1")
	if row.InProgress() || row.ActualHours() != 3 {
		t.Fatalf("finished remote row was overwritten: %+v", row)
	}
	if got := reopened.engine.History(); len(got) != 1 || got[0].ID != "remote-1" {
		t.Fatalf("expected the finished fast in history, got %+v", got)
	}
}

func TestSyncInsertsAgainWhenRemoteRowIsGone(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	if err := h.engine.SetIdentity(ctx, alice); err != nil {
		t.Fatalf("set identity: %v", err)
	}
	if _, err := h.engine.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	waitFor(t, "first push", func() bool { return h.remote.count("alice") == 1 })
	if _, remoteID, err := h.engine.SyncNow(ctx); err != nil || remoteID != "remote-1" {
		t.Fatalf("sync: %s %v", remoteID, err)
	}

	if err := h.remote.Delete(ctx, alice, "remote-1"); err != nil {
		t.Fatalf("delete remote row: %v", err)
	}
	_, remoteID, err := h.engine.SyncNow(ctx)
	if err != nil || remoteID != "remote-2" {
		t.Fatalf("expected the push to insert remote-2, got %s %v", remoteID, err)
	}
	if row, ok := h.remote.row("alice", "remote-2"); !ok || !row.InProgress() {
		t.Fatalf("inserted row must be in progress: %+v", row)
	}
	if m := h.cache.snapshot().Markers; m.RemoteID != "remote-2" {
		t.Fatalf("markers still point at the deleted row: %+v", m)
	}

	if err := h.remote.Delete(ctx, alice, "remote-2"); err != nil {
		t.Fatalf("delete remote row: %v", err)
	}
	h.clock.Advance(2 * time.Hour)
	saved, _, err := h.engine.Stop(ctx)
	if err != nil {
		t.Fatalf("stop: %v", err)
	}
	if saved.ID != "remote-3" {
		t.Fatalf("terminal write should insert a new row, got %s", saved.ID)
	}
	if row, ok := h.remote.row("alice", "remote-3"); !ok || row.InProgress() || row.ActualHours() != 2 {
		t.Fatalf("terminal row not stored remotely: %+v", row)
	}
	if doc := h.cache.snapshot(); len(doc.History) != 0 {
		t.Fatalf("terminal record should not fall back to the cache, got %+v", doc.History)
	}
}
