package domain

import (
	"fmt"
	"time"

	apperrors "fasttrack/internal/platform/errors"
)

type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// Timer is the single-session state machine. Terminal transitions fold straight back to Idle.
type Timer struct {
	state    State
	protocol Protocol
	active   Session
}

func NewTimer(protocol Protocol) *Timer {
	if protocol == "" {
		protocol = DefaultProtocol
	}
	return &Timer{protocol: protocol}
}

func (t *Timer) State() State {
	return t.state
}

func (t *Timer) Protocol() Protocol {
	return t.protocol
}

func (t *Timer) Active() (Session, bool) {
	if t.state != StateActive {
		return Session{}, false
	}
	return t.active, true
}

func (t *Timer) SelectProtocol(p Protocol) error {
	if t.state == StateActive {
		return apperrors.ErrActiveSessionExists
	}
	if p == "" {
		return fmt.Errorf("%w: protocol is required", apperrors.ErrInvalidInput)
	}
	t.protocol = p
	return nil
}

func (t *Timer) Start(id string, now time.Time) (Session, error) {
	if t.state == StateActive {
		return Session{}, apperrors.ErrActiveSessionExists
	}
	if id == "" {
		return Session{}, fmt.Errorf("%w: session id is required", apperrors.ErrInvalidInput)
	}
	t.active = Session{
		ID:             id,
		Protocol:       t.protocol,
		StartTime:      now,
		TargetDuration: t.protocol.TargetHours(),
	}
	t.state = StateActive
	return t.active, nil
}

// Tick reports progress and, once the target is reached, performs natural completion.
// done is true exactly once per session because the timer has left Active by the next call.
func (t *Timer) Tick(now time.Time) (progress Progress, finished Session, done bool) {
	if t.state != StateActive {
		return Progress{}, Session{}, false
	}
	finished, progress, done = CompleteIfDue(t.active, now)
	if !done {
		return progress, Session{}, false
	}
	t.reset()
	return progress, finished, true
}

func (t *Timer) Stop(now time.Time) (Session, error) {
	if t.state != StateActive {
		return Session{}, apperrors.ErrNoActiveSession
	}
	end := now
	if !end.After(t.active.StartTime) {
		end = t.active.StartTime.Add(time.Millisecond)
	}
	finished := t.active.Finish(end, false)
	t.reset()
	return finished, nil
}

// Adopt installs an in-progress session recovered from storage. The target always
// follows the session's protocol, whatever duration was stored with it.
func (t *Timer) Adopt(s Session) error {
	if !s.InProgress() {
		return fmt.Errorf("%w: session %s is not in progress", apperrors.ErrInvalidInput, s.ID)
	}
	s.TargetDuration = s.Protocol.TargetHours()
	t.active = s
	t.protocol = s.Protocol
	t.state = StateActive
	return nil
}

// Reset drops any active session without emitting a record.
func (t *Timer) Reset() {
	t.reset()
}

func (t *Timer) reset() {
	t.active = Session{}
	t.state = StateIdle
}
