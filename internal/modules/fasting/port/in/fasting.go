package in

import (
	"context"

	"fasttrack/internal/modules/fasting/dto"
)

type Usecase interface {
	SelectProtocol(ctx context.Context, protocol string) error
	Start(ctx context.Context) (dto.SessionOutput, error)
	Stop(ctx context.Context) (dto.StopOutput, error)
	Status(ctx context.Context) (dto.StatusOutput, error)
	AddManual(ctx context.Context, input dto.ManualInput) (dto.SessionOutput, error)
	History(ctx context.Context) ([]dto.SessionOutput, error)
	Delete(ctx context.Context, id string) error
	Migrate(ctx context.Context) (dto.MigrateOutput, error)
	SyncNow(ctx context.Context) (dto.SyncOutput, error)
	Export(ctx context.Context) (dto.ExportOutput, error)
	Run(ctx context.Context) error
	Close() error
}
