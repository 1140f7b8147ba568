package domain

import (
	"fmt"
	"math"
	"time"
)

// Record is the slice of a fasting session the statistics need.
type Record struct {
	ID          string
	Protocol    string
	Start       time.Time
	TargetHours float64
	ActualHours float64
	Completed   bool
}

type Stats struct {
	Total          int
	Completed      int
	CompletionRate float64
	ThisWeek       int
	ThisMonth      int
	AverageHours   float64
	CurrentStreak  int
}

func ComputeStats(records []Record, now time.Time) Stats {
	st := Stats{Total: len(records)}
	if st.Total == 0 {
		return st
	}
	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, -1, 0)
	var sum float64
	for _, r := range records {
		if r.Completed {
			st.Completed++
		}
		if !r.Start.Before(weekAgo) {
			st.ThisWeek++
		}
		if !r.Start.Before(monthAgo) {
			st.ThisMonth++
		}
		sum += r.ActualHours
	}
	st.CompletionRate = float64(st.Completed) / float64(st.Total) * 100
	st.AverageHours = sum / float64(st.Total)
	st.CurrentStreak = Streak(records, now)
	return st
}

// Streak counts consecutive calendar days, ending today, with at least one completed fast.
// Days are taken in now's location.
func Streak(records []Record, now time.Time) int {
	days := map[time.Time]bool{}
	for _, r := range records {
		if r.Completed {
			days[dayOf(r.Start, now.Location())] = true
		}
	}
	streak := 0
	for day := dayOf(now, now.Location()); days[day]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatDuration renders hours as "Xh Ym".
func FormatDuration(hours float64) string {
	if hours < 0 {
		hours = 0
	}
	total := int(math.Round(hours * 60))
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
