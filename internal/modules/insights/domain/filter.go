package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "fasttrack/internal/platform/errors"
)

type Range string

const (
	RangeWeek  Range = "week"
	RangeMonth Range = "month"
	RangeAll   Range = "all"
)

type StatusFilter string

const (
	StatusAll        StatusFilter = "all"
	StatusCompleted  StatusFilter = "completed"
	StatusIncomplete StatusFilter = "incomplete"
)

type Filter struct {
	Range  Range
	Status StatusFilter
}

func ParseFilter(rangeValue, statusValue string) (Filter, error) {
	f := Filter{Range: RangeAll, Status: StatusAll}
	switch r := Range(strings.ToLower(strings.TrimSpace(rangeValue))); r {
	case "":
	case RangeWeek, RangeMonth, RangeAll:
		f.Range = r
	default:
		return Filter{}, fmt.Errorf("%w: range %q (want week|month|all)", apperrors.ErrInvalidInput, rangeValue)
	}
	switch s := StatusFilter(strings.ToLower(strings.TrimSpace(statusValue))); s {
	case "":
	case StatusAll, StatusCompleted, StatusIncomplete:
		f.Status = s
	default:
		return Filter{}, fmt.Errorf("%w: status %q (want all|completed|incomplete)", apperrors.ErrInvalidInput, statusValue)
	}
	return f, nil
}

func (f Filter) Apply(records []Record, now time.Time) []Record {
	var cutoff time.Time
	switch f.Range {
	case RangeWeek:
		cutoff = now.AddDate(0, 0, -7)
	case RangeMonth:
		cutoff = now.AddDate(0, -1, 0)
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !cutoff.IsZero() && r.Start.Before(cutoff) {
			continue
		}
		if f.Status == StatusCompleted && !r.Completed {
			continue
		}
		if f.Status == StatusIncomplete && r.Completed {
			continue
		}
		out = append(out, r)
	}
	return out
}
