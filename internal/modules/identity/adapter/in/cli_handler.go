package in

import (
	"context"

	identitydto "fasttrack/internal/modules/identity/dto"
	identityin "fasttrack/internal/modules/identity/port/in"
)

type CLIHandler struct {
	usecase identityin.Usecase
}

func NewCLIHandler(usecase identityin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Login(ctx context.Context, userID, email, token string) (identitydto.Identity, error) {
	return h.usecase.SignIn(ctx, identitydto.SignInInput{UserID: userID, Email: email, Token: token})
}

func (h CLIHandler) Logout(ctx context.Context) error {
	return h.usecase.SignOut(ctx)
}

func (h CLIHandler) WhoAmI(ctx context.Context) (identitydto.Identity, error) {
	return h.usecase.Current(ctx)
}
