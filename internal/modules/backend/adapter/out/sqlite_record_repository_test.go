package out_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	backendstore "fasttrack/internal/modules/backend/adapter/out"
	"fasttrack/internal/modules/backend/domain"
	apperrors "fasttrack/internal/platform/errors"
)

func record(id string, start time.Time) domain.Record {
	return domain.Record{
		ID:             id,
		UserID:         "u1",
		Type:           "16:8",
		StartTime:      start,
		TargetDuration: 16,
		CreatedAt:      start,
		UpdatedAt:      start,
	}
}

func TestSQLiteRecordRepositoryOrdersAndScopes(t *testing.T) {
	ctx := context.Background()
	db, err := backendstore.OpenDB(filepath.Join(t.TempDir(), "fastbase.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	repo, err := backendstore.NewSQLiteRecordRepository(ctx, db)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	base := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	for _, rec := range []domain.Record{
		record("a", base),
		record("b", base.Add(24*time.Hour+500*time.Millisecond)),
		record("c", base.Add(24*time.Hour)),
	} {
		if _, err := repo.Upsert(ctx, rec); err != nil {
			t.Fatalf("upsert %s: %v", rec.ID, err)
		}
	}
	list, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].ID != "b" || list[1].ID != "c" || list[2].ID != "a" {
		t.Fatalf("unexpected order: %+v", list)
	}
	if other, _ := repo.List(ctx, "u2"); len(other) != 0 {
		t.Fatalf("rows leaked across users: %+v", other)
	}
}

func TestSQLiteRecordRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	db, err := backendstore.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	repo, err := backendstore.NewSQLiteRecordRepository(ctx, db)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}

	start := time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)
	rec := record("x", start)
	if err := repo.Update(ctx, rec); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := repo.Upsert(ctx, rec); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	end := start.Add(17 * time.Hour)
	actual := 17.0
	rec.EndTime, rec.ActualDuration, rec.Completed = &end, &actual, true
	if err := repo.Update(ctx, rec); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.Get(ctx, "u1", "x")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.EndTime == nil || !got.EndTime.Equal(end) || got.ActualDuration == nil || *got.ActualDuration != 17 || !got.Completed {
		t.Fatalf("unexpected record: %+v", got)
	}

	if err := repo.Delete(ctx, "u2", "x"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for another user, got %v", err)
	}
	if err := repo.Delete(ctx, "u1", "x"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, "u1", "x"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
