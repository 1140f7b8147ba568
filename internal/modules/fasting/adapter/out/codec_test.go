package out_test

import (
	"testing"
	"time"

	fastingout "fasttrack/internal/modules/fasting/adapter/out"
	"fasttrack/internal/modules/fasting/domain"
	"fasttrack/internal/modules/fasting/dto"
)

func TestRowConversionPreservesSession(t *testing.T) {
	start := time.Date(2025, 3, 3, 21, 15, 30, 123000000, time.FixedZone("CET", 3600))
	end := start.Add(17*time.Hour + 30*time.Minute)
	actual := 17.5
	sessions := []domain.Session{
		{ID: "live", Protocol: domain.Protocol20x4, StartTime: start, TargetDuration: 20},
		{ID: "done", Protocol: domain.Protocol18x6, StartTime: start, EndTime: &end, TargetDuration: 18, ActualDuration: &actual, Completed: true, ManuallyAdded: true},
	}
	for _, s := range sessions {
		row := fastingout.ToRow(s, "alice")
		if row.UserID != "alice" || row.Type != string(s.Protocol) {
			t.Fatalf("unexpected row: %+v", row)
		}
		back, err := fastingout.FromRow(row)
		if err != nil {
			t.Fatalf("from row: %v", err)
		}
		if back.ID != s.ID || back.Protocol != s.Protocol || !back.StartTime.Equal(s.StartTime) {
			t.Fatalf("identity fields changed: %+v -> %+v", s, back)
		}
		if back.InProgress() != s.InProgress() || back.Completed != s.Completed || back.ManuallyAdded != s.ManuallyAdded {
			t.Fatalf("flags changed: %+v -> %+v", s, back)
		}
		if (s.EndTime == nil) != (back.EndTime == nil) || (s.EndTime != nil && !back.EndTime.Equal(*s.EndTime)) {
			t.Fatalf("end time changed: %v -> %v", s.EndTime, back.EndTime)
		}
		if back.ActualHours() != s.ActualHours() || back.TargetDuration != s.TargetDuration {
			t.Fatalf("durations changed: %+v -> %+v", s, back)
		}
	}
}

func TestFromRowDefaultsTarget(t *testing.T) {
	s, err := fastingout.FromRow(dto.Row{ID: "x", Type: "18:6", StartTime: "2025-01-01T08:00:00Z"})
	if err != nil {
		t.Fatalf("from row: %v", err)
	}
	if s.TargetDuration != 18 {
		t.Fatalf("expected target from protocol, got %v", s.TargetDuration)
	}
	if _, err := fastingout.FromRow(dto.Row{ID: "y", StartTime: "yesterday"}); err == nil {
		t.Fatalf("expected parse error")
	}
}
