package usecase

import (
	"context"
	"fmt"
	"time"

	"fasttrack/internal/modules/insights/domain"
	insightsdto "fasttrack/internal/modules/insights/dto"
	insightsin "fasttrack/internal/modules/insights/port/in"
	"fasttrack/internal/modules/insights/service"
	apperrors "fasttrack/internal/platform/errors"
)

type Interactor struct {
	svc *service.InsightsService
}

func NewInteractor(svc *service.InsightsService) insightsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Stats(ctx context.Context) (insightsdto.StatsOutput, error) {
	st, err := i.svc.Stats(ctx)
	if err != nil {
		return insightsdto.StatsOutput{}, err
	}
	return insightsdto.StatsOutput{
		Total:          st.Total,
		Completed:      st.Completed,
		CompletionRate: st.CompletionRate,
		ThisWeek:       st.ThisWeek,
		ThisMonth:      st.ThisMonth,
		AverageHours:   st.AverageHours,
		AverageLabel:   domain.FormatDuration(st.AverageHours),
		CurrentStreak:  st.CurrentStreak,
	}, nil
}

func (i *Interactor) History(ctx context.Context, input insightsdto.HistoryInput) ([]insightsdto.RecordOutput, error) {
	filter, err := domain.ParseFilter(input.Range, input.Status)
	if err != nil {
		return nil, err
	}
	records, err := i.svc.History(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]insightsdto.RecordOutput, 0, len(records))
	for _, r := range records {
		out = append(out, insightsdto.RecordOutput{
			ID:            r.ID,
			Protocol:      r.Protocol,
			Start:         r.Start,
			TargetHours:   r.TargetHours,
			ActualHours:   r.ActualHours,
			Completed:     r.Completed,
			DurationLabel: domain.FormatDuration(r.ActualHours),
		})
	}
	return out, nil
}

func (i *Interactor) Month(ctx context.Context, year int, month time.Month) (insightsdto.MonthOutput, error) {
	if year != 0 && (month < time.January || month > time.December) {
		return insightsdto.MonthOutput{}, fmt.Errorf("%w: month %d", apperrors.ErrInvalidInput, month)
	}
	m, err := i.svc.Month(ctx, year, month)
	if err != nil {
		return insightsdto.MonthOutput{}, err
	}
	out := insightsdto.MonthOutput{
		Year:           m.Year,
		Month:          m.Month,
		Total:          m.Total,
		Completed:      m.Completed,
		CompletionRate: m.CompletionRate,
		FastingDays:    m.FastingDays,
		Days:           make([]insightsdto.DayOutput, 0, len(m.Days)),
	}
	for _, d := range m.Days {
		out.Days = append(out.Days, insightsdto.DayOutput{Date: d.Date, Status: string(d.Status), Fasts: d.Fasts})
	}
	return out, nil
}
