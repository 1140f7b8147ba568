package in

import (
	"context"

	fastingdto "fasttrack/internal/modules/fasting/dto"
)

type Usecase interface {
	List(ctx context.Context, userID string) ([]fastingdto.Row, error)
	Get(ctx context.Context, userID, id string) (fastingdto.Row, error)
	Create(ctx context.Context, userID string, row fastingdto.Row) (fastingdto.Row, error)
	Update(ctx context.Context, userID, id string, row fastingdto.Row) (fastingdto.Row, error)
	Delete(ctx context.Context, userID, id string) error
}
