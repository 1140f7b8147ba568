package domain

import (
	"fmt"
	"sort"
	"time"
)

const SchemaVersion = 1

// CompletionThreshold is the share of the target a fast must reach to count as completed.
const CompletionThreshold = 0.9

type Session struct {
	ID             string     `json:"id"`
	Protocol       Protocol   `json:"type"`
	StartTime      time.Time  `json:"startTime"`
	EndTime        *time.Time `json:"endTime,omitempty"`
	TargetDuration float64    `json:"targetDuration"`
	ActualDuration *float64   `json:"actualDuration,omitempty"`
	Completed      bool       `json:"completed"`
	ManuallyAdded  bool       `json:"manuallyAdded"`
}

// InProgress reports a session that has neither ended nor been marked completed.
func (s Session) InProgress() bool {
	return s.EndTime == nil && !s.Completed
}

func (s Session) ActualHours() float64 {
	if s.ActualDuration == nil {
		return 0
	}
	return *s.ActualDuration
}

func (s Session) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("session id is required")
	}
	if s.StartTime.IsZero() {
		return fmt.Errorf("session %s: start time is required", s.ID)
	}
	if s.EndTime != nil && !s.StartTime.Before(*s.EndTime) {
		return fmt.Errorf("session %s: end time must be after start time", s.ID)
	}
	return nil
}

// Finish stamps the terminal fields. Natural completion classifies by the threshold;
// a manual stop never counts as completed.
func (s Session) Finish(end time.Time, natural bool) Session {
	hours := end.Sub(s.StartTime).Hours()
	if hours < 0 {
		hours = 0
	}
	s.EndTime = &end
	s.ActualDuration = &hours
	s.Completed = natural && IsCompleted(hours, s.TargetDuration)
	return s
}

func IsCompleted(actualHours, targetHours float64) bool {
	return actualHours >= CompletionThreshold*targetHours
}

// SortNewestFirst orders sessions by start time, most recent first.
func SortNewestFirst(sessions []Session) {
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].StartTime.After(sessions[j].StartTime)
	})
}

// Upsert replaces the entry with the same id or adds it, keeping newest-first order.
func Upsert(history []Session, s Session) []Session {
	out := make([]Session, 0, len(history)+1)
	replaced := false
	for _, h := range history {
		if h.ID == s.ID {
			out = append(out, s)
			replaced = true
			continue
		}
		out = append(out, h)
	}
	if !replaced {
		out = append(out, s)
	}
	SortNewestFirst(out)
	return out
}

func Remove(history []Session, id string) ([]Session, bool) {
	out := make([]Session, 0, len(history))
	found := false
	for _, h := range history {
		if h.ID == id {
			found = true
			continue
		}
		out = append(out, h)
	}
	return out, found
}
