package out

import (
	"context"

	"fasttrack/internal/modules/identity/domain"
)

type CredentialStore interface {
	Load(ctx context.Context) (domain.Credentials, error)
	Save(ctx context.Context, creds domain.Credentials) error
	Clear(ctx context.Context) error
}
