package out_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	fastingout "fasttrack/internal/modules/fasting/adapter/out"
	"fasttrack/internal/modules/fasting/domain"
	"fasttrack/internal/modules/fasting/dto"
	identitydto "fasttrack/internal/modules/identity/dto"
	apperrors "fasttrack/internal/platform/errors"
)

var alice = identitydto.Identity{UserID: "alice", Token: "secret"}

type recordsServer struct {
	mu   sync.Mutex
	rows map[string]dto.Row
	seq  int
}

func (s *recordsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Header.Get("Authorization") != "Bearer secret" || r.Header.Get("X-User-ID") != "alice" {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized"})
		return
	}
	id := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, "/api/v1/records"), "/")
	switch {
	case r.Method == http.MethodGet && id == "":
		list := dto.RowList{Records: []dto.Row{}}
		for _, row := range s.rows {
			list.Records = append(list.Records, row)
		}
		_ = json.NewEncoder(w).Encode(list)
	case r.Method == http.MethodPost:
		var row dto.Row
		_ = json.NewDecoder(r.Body).Decode(&row)
		s.seq++
		row.ID = fmt.Sprintf("srv-%d", s.seq)
		s.rows[row.ID] = row
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(row)
	case r.Method == http.MethodPut:
		if _, ok := s.rows[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
			return
		}
		var row dto.Row
		_ = json.NewDecoder(r.Body).Decode(&row)
		s.rows[id] = row
		_ = json.NewEncoder(w).Encode(row)
	case r.Method == http.MethodDelete:
		if _, ok := s.rows[id]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		delete(s.rows, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad request"})
	}
}

func TestHTTPRemoteStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(&recordsServer{rows: map[string]dto.Row{}})
	defer srv.Close()
	store := fastingout.NewHTTPRemoteStore(srv.Client(), srv.URL+"/")

	live := domain.Session{ID: "local-1", Protocol: domain.Protocol16x8, StartTime: time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC), TargetDuration: 16}
	saved, err := store.Insert(ctx, alice, live)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID != "srv-1" || !saved.InProgress() {
		t.Fatalf("unexpected insert result: %+v", saved)
	}

	finished := saved.Finish(saved.StartTime.Add(16*time.Hour), true)
	if err := store.Update(ctx, alice, finished); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := store.List(ctx, alice)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || !list[0].Completed || list[0].ActualHours() != 16 {
		t.Fatalf("unexpected list: %+v", list)
	}

	if err := store.Delete(ctx, alice, "srv-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, alice, "srv-1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Update(ctx, alice, finished); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestHTTPRemoteStoreAuthErrors(t *testing.T) {
	ctx := context.Background()
	srv := httptest.NewServer(&recordsServer{rows: map[string]dto.Row{}})
	defer srv.Close()
	store := fastingout.NewHTTPRemoteStore(srv.Client(), srv.URL)

	if _, err := store.List(ctx, identitydto.Identity{}); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for anonymous, got %v", err)
	}
	wrong := identitydto.Identity{UserID: "alice", Token: "nope"}
	if _, err := store.List(ctx, wrong); !errors.Is(err, apperrors.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for bad token, got %v", err)
	}
}
