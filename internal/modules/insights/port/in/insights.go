package in

import (
	"context"
	"time"

	"fasttrack/internal/modules/insights/dto"
)

type Usecase interface {
	Stats(ctx context.Context) (dto.StatsOutput, error)
	History(ctx context.Context, input dto.HistoryInput) ([]dto.RecordOutput, error)
	Month(ctx context.Context, year int, month time.Month) (dto.MonthOutput, error)
}
