package usecase

import (
	"context"
	"time"

	"fasttrack/internal/modules/identity/domain"
	identitydto "fasttrack/internal/modules/identity/dto"
	identityin "fasttrack/internal/modules/identity/port/in"
	"fasttrack/internal/modules/identity/service"
)

type Interactor struct {
	svc *service.IdentityService
}

func NewInteractor(svc *service.IdentityService) identityin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Current(ctx context.Context) (identitydto.Identity, error) {
	creds, err := i.svc.Current(ctx)
	if err != nil {
		return identitydto.Identity{}, err
	}
	return toDTO(creds), nil
}

func (i *Interactor) SignIn(ctx context.Context, input identitydto.SignInInput) (identitydto.Identity, error) {
	creds, err := i.svc.SignIn(ctx, domain.Credentials{UserID: input.UserID, Email: input.Email, Token: input.Token})
	if err != nil {
		return identitydto.Identity{}, err
	}
	return toDTO(creds), nil
}

func (i *Interactor) SignOut(ctx context.Context) error {
	return i.svc.SignOut(ctx)
}

func (i *Interactor) Subscribe(fn func(identitydto.Identity)) func() {
	return i.svc.Subscribe(func(c domain.Credentials) { fn(toDTO(c)) })
}

func (i *Interactor) Watch(ctx context.Context, interval time.Duration) {
	i.svc.Watch(ctx, interval)
}

func toDTO(c domain.Credentials) identitydto.Identity {
	return identitydto.Identity{UserID: c.UserID, Email: c.Email, Token: c.Token}
}
