package domain

import "time"

// ActiveMarkers identify the in-progress fast on this device.
type ActiveMarkers struct {
	IsFasting bool
	SessionID string
	StartTime *time.Time
	Protocol  Protocol
	// RemoteID is set once the sync driver has created the remote row.
	RemoteID string
}

// CacheDocument is the whole per-device document; writers replace it as a unit.
type CacheDocument struct {
	History []Session
	Markers ActiveMarkers
}

func MarkersFor(s Session, remoteID string) ActiveMarkers {
	start := s.StartTime
	return ActiveMarkers{
		IsFasting: true,
		SessionID: s.ID,
		StartTime: &start,
		Protocol:  s.Protocol,
		RemoteID:  remoteID,
	}
}

// Session rebuilds the in-progress session the markers describe.
func (m ActiveMarkers) Session() (Session, bool) {
	if !m.IsFasting || m.StartTime == nil || m.StartTime.IsZero() {
		return Session{}, false
	}
	protocol := m.Protocol
	if protocol == "" {
		protocol = DefaultProtocol
	}
	return Session{
		ID:             m.SessionID,
		Protocol:       protocol,
		StartTime:      *m.StartTime,
		TargetDuration: protocol.TargetHours(),
	}, true
}
