package in

import (
	"context"

	fastingdto "fasttrack/internal/modules/fasting/dto"
	fastingin "fasttrack/internal/modules/fasting/port/in"
)

// TUIHandler is the surface the dashboard drives. Background work starts with Run.
type TUIHandler struct {
	usecase fastingin.Usecase
}

func NewTUIHandler(usecase fastingin.Usecase) TUIHandler {
	return TUIHandler{usecase: usecase}
}

func (h TUIHandler) Status(ctx context.Context) (fastingdto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h TUIHandler) Start(ctx context.Context) (fastingdto.SessionOutput, error) {
	return h.usecase.Start(ctx)
}

func (h TUIHandler) Stop(ctx context.Context) (fastingdto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h TUIHandler) SelectProtocol(ctx context.Context, protocol string) error {
	return h.usecase.SelectProtocol(ctx, protocol)
}

func (h TUIHandler) AddManual(ctx context.Context, input fastingdto.ManualInput) (fastingdto.SessionOutput, error) {
	return h.usecase.AddManual(ctx, input)
}

func (h TUIHandler) Delete(ctx context.Context, id string) error {
	return h.usecase.Delete(ctx, id)
}

func (h TUIHandler) Sync(ctx context.Context) (fastingdto.SyncOutput, error) {
	return h.usecase.SyncNow(ctx)
}

func (h TUIHandler) Export(ctx context.Context) (fastingdto.ExportOutput, error) {
	return h.usecase.Export(ctx)
}

func (h TUIHandler) Run(ctx context.Context) error {
	return h.usecase.Run(ctx)
}
