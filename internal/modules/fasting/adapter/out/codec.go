package out

import (
	"fmt"
	"time"

	"fasttrack/internal/modules/fasting/domain"
	"fasttrack/internal/modules/fasting/dto"
)

const timeLayout = time.RFC3339Nano

// ToRow converts a session to its snake_case wire form.
func ToRow(s domain.Session, userID string) dto.Row {
	row := dto.Row{
		ID:             s.ID,
		UserID:         userID,
		Type:           string(s.Protocol),
		StartTime:      s.StartTime.UTC().Format(timeLayout),
		TargetDuration: s.TargetDuration,
		Completed:      s.Completed,
		ManuallyAdded:  s.ManuallyAdded,
	}
	if s.EndTime != nil {
		end := s.EndTime.UTC().Format(timeLayout)
		row.EndTime = &end
	}
	if s.ActualDuration != nil {
		actual := *s.ActualDuration
		row.ActualDuration = &actual
	}
	return row
}

func FromRow(row dto.Row) (domain.Session, error) {
	start, err := time.Parse(timeLayout, row.StartTime)
	if err != nil {
		return domain.Session{}, fmt.Errorf("row %s: start_time: %w", row.ID, err)
	}
	s := domain.Session{
		ID:             row.ID,
		Protocol:       domain.Protocol(row.Type),
		StartTime:      start,
		TargetDuration: row.TargetDuration,
		Completed:      row.Completed,
		ManuallyAdded:  row.ManuallyAdded,
	}
	if row.EndTime != nil && *row.EndTime != "" {
		end, err := time.Parse(timeLayout, *row.EndTime)
		if err != nil {
			return domain.Session{}, fmt.Errorf("row %s: end_time: %w", row.ID, err)
		}
		s.EndTime = &end
	}
	if row.ActualDuration != nil {
		actual := *row.ActualDuration
		s.ActualDuration = &actual
	}
	if s.TargetDuration <= 0 {
		s.TargetDuration = s.Protocol.TargetHours()
	}
	return s, nil
}
