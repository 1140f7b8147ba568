package out

import (
	"context"

	fastingin "fasttrack/internal/modules/fasting/port/in"
	"fasttrack/internal/modules/insights/domain"
	insightsout "fasttrack/internal/modules/insights/port/out"
)

type FastingHistoryAdapter struct {
	fasting fastingin.Usecase
}

func NewFastingHistoryAdapter(fasting fastingin.Usecase) insightsout.HistorySource {
	return FastingHistoryAdapter{fasting: fasting}
}

func (a FastingHistoryAdapter) Records(ctx context.Context) ([]domain.Record, error) {
	history, err := a.fasting.History(ctx)
	if err != nil {
		return nil, err
	}
	records := make([]domain.Record, 0, len(history))
	for _, s := range history {
		if s.InProgress {
			continue
		}
		r := domain.Record{
			ID:          s.ID,
			Protocol:    s.Protocol,
			Start:       s.StartTime,
			TargetHours: s.TargetHours,
			Completed:   s.Completed,
		}
		if s.ActualHours != nil {
			r.ActualHours = *s.ActualHours
		}
		records = append(records, r)
	}
	return records, nil
}
