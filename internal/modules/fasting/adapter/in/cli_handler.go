package in

import (
	"context"

	fastingdto "fasttrack/internal/modules/fasting/dto"
	fastingin "fasttrack/internal/modules/fasting/port/in"
)

type CLIHandler struct {
	usecase fastingin.Usecase
}

func NewCLIHandler(usecase fastingin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) SelectProtocol(ctx context.Context, protocol string) error {
	return h.usecase.SelectProtocol(ctx, protocol)
}

// Start optionally switches protocol first; an empty protocol keeps the current one.
func (h CLIHandler) Start(ctx context.Context, protocol string) (fastingdto.SessionOutput, error) {
	if protocol != "" {
		if err := h.usecase.SelectProtocol(ctx, protocol); err != nil {
			return fastingdto.SessionOutput{}, err
		}
	}
	return h.usecase.Start(ctx)
}

func (h CLIHandler) Stop(ctx context.Context) (fastingdto.StopOutput, error) {
	return h.usecase.Stop(ctx)
}

func (h CLIHandler) Status(ctx context.Context) (fastingdto.StatusOutput, error) {
	return h.usecase.Status(ctx)
}

func (h CLIHandler) AddManual(ctx context.Context, input fastingdto.ManualInput) (fastingdto.SessionOutput, error) {
	return h.usecase.AddManual(ctx, input)
}

func (h CLIHandler) History(ctx context.Context) ([]fastingdto.SessionOutput, error) {
	return h.usecase.History(ctx)
}

func (h CLIHandler) Delete(ctx context.Context, id string) error {
	return h.usecase.Delete(ctx, id)
}

func (h CLIHandler) Migrate(ctx context.Context) (fastingdto.MigrateOutput, error) {
	return h.usecase.Migrate(ctx)
}

func (h CLIHandler) Sync(ctx context.Context) (fastingdto.SyncOutput, error) {
	return h.usecase.SyncNow(ctx)
}

func (h CLIHandler) Export(ctx context.Context) (fastingdto.ExportOutput, error) {
	return h.usecase.Export(ctx)
}

func (h CLIHandler) Run(ctx context.Context) error {
	return h.usecase.Run(ctx)
}

func (h CLIHandler) Close() error {
	return h.usecase.Close()
}
