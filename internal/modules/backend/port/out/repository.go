package out

import (
	"context"

	"fasttrack/internal/modules/backend/domain"
)

// RecordRepository stores rows scoped by user. Lookups for another user's row report not found.
type RecordRepository interface {
	List(ctx context.Context, userID string) ([]domain.Record, error)
	Get(ctx context.Context, userID, id string) (domain.Record, error)
	Upsert(ctx context.Context, record domain.Record) (domain.Record, error)
	Update(ctx context.Context, record domain.Record) error
	Delete(ctx context.Context, userID, id string) error
}
