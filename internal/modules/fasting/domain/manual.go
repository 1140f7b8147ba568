package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "fasttrack/internal/platform/errors"
)

// IncompleteShare is the default duration share for an incomplete manual entry.
const IncompleteShare = 0.7

// ManualEntry describes a fast entered after the fact.
type ManualEntry struct {
	Protocol    Protocol
	StartTime   time.Time
	Completed   bool
	ActualHours *float64
	// Duration is an optional "HH:MM" override used when ActualHours is nil.
	Duration string
}

func (e ManualEntry) Build(id string) (Session, error) {
	if e.StartTime.IsZero() {
		return Session{}, fmt.Errorf("%w: start time is required", apperrors.ErrInvalidInput)
	}
	protocol := e.Protocol
	if protocol == "" {
		protocol = DefaultProtocol
	}
	target := protocol.TargetHours()

	var actual float64
	switch {
	case e.ActualHours != nil:
		actual = *e.ActualHours
	case strings.TrimSpace(e.Duration) != "":
		h, err := ParseHHMM(e.Duration)
		if err != nil {
			return Session{}, err
		}
		actual = h
	case e.Completed:
		actual = target
	default:
		actual = target * IncompleteShare
	}
	if actual <= 0 {
		return Session{}, fmt.Errorf("%w: duration must be positive", apperrors.ErrInvalidInput)
	}

	end := e.StartTime.Add(time.Duration(actual * float64(time.Hour)))
	return Session{
		ID:             id,
		Protocol:       protocol,
		StartTime:      e.StartTime,
		EndTime:        &end,
		TargetDuration: target,
		ActualDuration: &actual,
		Completed:      e.Completed,
		ManuallyAdded:  true,
	}, nil
}

// ParseHHMM turns "16:30" into 16.5 hours.
func ParseHHMM(s string) (float64, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("%w: duration %q must be HH:MM", apperrors.ErrInvalidInput, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, fmt.Errorf("%w: bad hours in %q", apperrors.ErrInvalidInput, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: bad minutes in %q", apperrors.ErrInvalidInput, s)
	}
	return float64(h) + float64(m)/60, nil
}
