package in

import (
	"context"
	"time"

	insightsdto "fasttrack/internal/modules/insights/dto"
	insightsin "fasttrack/internal/modules/insights/port/in"
)

type TUIHandler struct {
	usecase insightsin.Usecase
}

func NewTUIHandler(usecase insightsin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Stats(ctx context.Context) (insightsdto.StatsOutput, error) {
	return h.usecase.Stats(ctx)
}

func (h TUIHandler) History(ctx context.Context, input insightsdto.HistoryInput) ([]insightsdto.RecordOutput, error) {
	return h.usecase.History(ctx, input)
}

func (h TUIHandler) Month(ctx context.Context, year int, month time.Month) (insightsdto.MonthOutput, error) {
	return h.usecase.Month(ctx, year, month)
}
