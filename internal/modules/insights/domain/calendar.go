package domain

import "time"

type DayStatus string

const (
	DayNone       DayStatus = "none"
	DayCompleted  DayStatus = "completed"
	DayIncomplete DayStatus = "incomplete"
	DayMixed      DayStatus = "mixed"
)

type Day struct {
	Date   time.Time
	Status DayStatus
	Fasts  int
}

type Month struct {
	Year           int
	Month          time.Month
	Days           []Day
	Total          int
	Completed      int
	CompletionRate float64
	FastingDays    int
}

// BuildMonth classifies every day of the month by the fasts that started on it.
func BuildMonth(records []Record, year int, month time.Month, loc *time.Location) Month {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	next := first.AddDate(0, 1, 0)

	type tally struct{ completed, incomplete int }
	byDay := map[int]*tally{}
	m := Month{Year: year, Month: month}
	for _, r := range records {
		start := r.Start.In(loc)
		if start.Before(first) || !start.Before(next) {
			continue
		}
		t := byDay[start.Day()]
		if t == nil {
			t = &tally{}
			byDay[start.Day()] = t
		}
		if r.Completed {
			t.completed++
			m.Completed++
		} else {
			t.incomplete++
		}
		m.Total++
	}

	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		day := Day{Date: d, Status: DayNone}
		if t := byDay[d.Day()]; t != nil {
			day.Fasts = t.completed + t.incomplete
			switch {
			case t.completed > 0 && t.incomplete > 0:
				day.Status = DayMixed
			case t.completed > 0:
				day.Status = DayCompleted
			default:
				day.Status = DayIncomplete
			}
			m.FastingDays++
		}
		m.Days = append(m.Days, day)
	}
	if m.Total > 0 {
		m.CompletionRate = float64(m.Completed) / float64(m.Total) * 100
	}
	return m
}
