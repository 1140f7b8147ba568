package service

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"

	"fasttrack/internal/modules/fasting/domain"
)

// Hydrate decides which session, if any, is live: a remote in-progress row wins, then the
// local markers. Running it twice without an intervening change adopts the same state.
func (e *Engine) Hydrate(ctx context.Context) error {
	e.mu.Lock()
	store := e.store
	identified := e.identifiedLocked()
	e.mu.Unlock()

	listed, err := store.List(ctx)
	if err != nil {
		e.logger.Warn("load history failed", "err", err)
		listed = nil
	}

	var (
		adopted  *domain.Session
		remoteID string
		resumed  bool
		history  = make([]domain.Session, 0, len(listed))
	)
	for _, s := range listed {
		if s.InProgress() {
			if identified && adopted == nil {
				found := s
				adopted = &found
				remoteID = s.ID
				resumed = true
			}
			continue
		}
		history = append(history, s)
	}

	doc, err := e.cache.Read(ctx)
	if err != nil {
		e.logger.Warn("read local markers failed", "err", err)
	}
	staleMarkers := false
	if adopted == nil {
		if finishedElsewhere(history, doc.Markers) {
			staleMarkers = true
			e.logger.Info("discarding local markers for a fast finished elsewhere",
				"id", doc.Markers.SessionID, "remote_id", doc.Markers.RemoteID)
		} else if s, ok := doc.Markers.Session(); ok {
			if s.ID == "" {
				s.ID = e.ids.New()
			}
			adopted = &s
			remoteID = doc.Markers.RemoteID
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.history = history
	if adopted != nil {
		current, active := e.timer.Active()
		if !active || current.ID != adopted.ID || !current.StartTime.Equal(adopted.StartTime) {
			e.timer.Reset()
			if err := e.timer.Adopt(*adopted); err != nil {
				return fmt.Errorf("adopt session %s: %w", adopted.ID, err)
			}
		}
		if remoteID != "" {
			e.remoteIDs[adopted.ID] = remoteID
		}
		e.writeMarkersLocked(ctx, domain.MarkersFor(*adopted, remoteID))
		if resumed {
			e.notice = fmt.Sprintf("Resumed your %s fast started %s", adopted.Protocol, humanize.Time(adopted.StartTime))
			e.logger.Info("resumed remote fast", "id", adopted.ID, "started", adopted.StartTime)
		}
	}
	if staleMarkers {
		e.writeMarkersLocked(ctx, domain.ActiveMarkers{})
	}
	e.hydrated = true
	e.startDriverLocked()
	return nil
}

// finishedElsewhere reports whether the markers name a row that already has a terminal
// record, which happens when another device stopped the fast this one was tracking.
func finishedElsewhere(history []domain.Session, markers domain.ActiveMarkers) bool {
	if !markers.IsFasting {
		return false
	}
	for _, s := range history {
		if (markers.RemoteID != "" && s.ID == markers.RemoteID) || (markers.SessionID != "" && s.ID == markers.SessionID) {
			return true
		}
	}
	return false
}
