package out

import (
	"context"

	"fasttrack/internal/modules/insights/domain"
)

// HistorySource yields finished fasts, newest first.
type HistorySource interface {
	Records(ctx context.Context) ([]domain.Record, error)
}
