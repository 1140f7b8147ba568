package service

import (
	"context"
	"time"

	"fasttrack/internal/modules/insights/domain"
	insightsout "fasttrack/internal/modules/insights/port/out"
	"fasttrack/internal/platform/clock"
)

type InsightsService struct {
	clock  clock.Clock
	source insightsout.HistorySource
	loc    *time.Location
}

// NewInsightsService groups days in loc; nil means local time.
func NewInsightsService(clock clock.Clock, source insightsout.HistorySource, loc *time.Location) *InsightsService {
	if loc == nil {
		loc = time.Local
	}
	return &InsightsService{clock: clock, source: source, loc: loc}
}

func (s *InsightsService) now() time.Time {
	return s.clock.Now().In(s.loc)
}

func (s *InsightsService) Stats(ctx context.Context) (domain.Stats, error) {
	records, err := s.source.Records(ctx)
	if err != nil {
		return domain.Stats{}, err
	}
	return domain.ComputeStats(records, s.now()), nil
}

func (s *InsightsService) History(ctx context.Context, filter domain.Filter) ([]domain.Record, error) {
	records, err := s.source.Records(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(records, s.now()), nil
}

// Month defaults to the current month when year is zero.
func (s *InsightsService) Month(ctx context.Context, year int, month time.Month) (domain.Month, error) {
	records, err := s.source.Records(ctx)
	if err != nil {
		return domain.Month{}, err
	}
	if year == 0 {
		now := s.now()
		year, month = now.Year(), now.Month()
	}
	return domain.BuildMonth(records, year, month, s.loc), nil
}
