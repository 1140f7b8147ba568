package domain

import (
	"fmt"
	"time"

	apperrors "fasttrack/internal/platform/errors"
)

// Record is one fasting row owned by a user.
type Record struct {
	ID             string
	UserID         string
	Type           string
	StartTime      time.Time
	EndTime        *time.Time
	TargetDuration float64
	ActualDuration *float64
	Completed      bool
	ManuallyAdded  bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

var allowedTargets = map[float64]bool{16: true, 18: true, 20: true}

func (r Record) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("%w: user id is required", apperrors.ErrInvalidInput)
	}
	if r.StartTime.IsZero() {
		return fmt.Errorf("%w: start_time is required", apperrors.ErrInvalidInput)
	}
	if r.EndTime != nil && !r.EndTime.After(r.StartTime) {
		return fmt.Errorf("%w: end_time must be after start_time", apperrors.ErrInvalidInput)
	}
	if !allowedTargets[r.TargetDuration] {
		return fmt.Errorf("%w: target_duration must be 16, 18 or 20", apperrors.ErrInvalidInput)
	}
	if r.ActualDuration != nil && *r.ActualDuration < 0 {
		return fmt.Errorf("%w: actual_duration must not be negative", apperrors.ErrInvalidInput)
	}
	return nil
}
