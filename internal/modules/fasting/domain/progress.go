package domain

import "time"

type Progress struct {
	Elapsed   time.Duration
	Remaining time.Duration
	Percent   float64
}

// Expired reports that the target has been reached.
func (p Progress) Expired() bool {
	return p.Remaining <= 0
}

func TargetDuration(hours float64) time.Duration {
	return time.Duration(hours * float64(time.Hour))
}

// ComputeProgress is derived, never stored.
func ComputeProgress(start time.Time, targetHours float64, now time.Time) Progress {
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = 0
	}
	target := TargetDuration(targetHours)
	remaining := target - elapsed
	if remaining < 0 {
		remaining = 0
	}
	percent := 100.0
	if target > 0 {
		percent = float64(elapsed) / float64(target) * 100
	}
	if percent > 100 {
		percent = 100
	}
	return Progress{Elapsed: elapsed, Remaining: remaining, Percent: percent}
}

// CompleteIfDue finishes an in-progress session once its target has elapsed.
func CompleteIfDue(s Session, now time.Time) (Session, Progress, bool) {
	progress := ComputeProgress(s.StartTime, s.TargetDuration, now)
	if !s.InProgress() || !progress.Expired() {
		return s, progress, false
	}
	return s.Finish(now, true), progress, true
}
