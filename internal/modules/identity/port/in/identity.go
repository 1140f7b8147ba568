package in

import (
	"context"
	"time"

	"fasttrack/internal/modules/identity/dto"
)

type Usecase interface {
	Current(ctx context.Context) (dto.Identity, error)
	SignIn(ctx context.Context, input dto.SignInInput) (dto.Identity, error)
	SignOut(ctx context.Context) error
	Subscribe(fn func(dto.Identity)) (cancel func())
	Watch(ctx context.Context, interval time.Duration)
}
