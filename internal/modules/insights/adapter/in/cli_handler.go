package in

import (
	"context"
	"time"

	insightsdto "fasttrack/internal/modules/insights/dto"
	insightsin "fasttrack/internal/modules/insights/port/in"
)

type CLIHandler struct {
	usecase insightsin.Usecase
}

func NewCLIHandler(usecase insightsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Stats(ctx context.Context) (insightsdto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h CLIHandler) History(ctx context.Context, rangeValue, status string) ([]insightsdto.RecordOutput, error) {
	return h.usecase.History(ctx, insightsdto.HistoryInput{Range: rangeValue, Status: status})
}

func (h CLIHandler) Month(ctx context.Context, year int, month time.Month) (insightsdto.MonthOutput, error) {
	return h.usecase.Month(ctx, year, month)
}
