package out

import (
	"context"
	"time"

	"fasttrack/internal/modules/fasting/domain"
	identitydto "fasttrack/internal/modules/identity/dto"
)

// RecordStore is the persistence strategy chosen once per identity change.
type RecordStore interface {
	List(ctx context.Context) ([]domain.Session, error)
	Insert(ctx context.Context, session domain.Session) (domain.Session, error)
	Update(ctx context.Context, session domain.Session) error
	Delete(ctx context.Context, id string) error
}

// RemoteStore is the identity-scoped remote table of fasting rows.
type RemoteStore interface {
	List(ctx context.Context, identity identitydto.Identity) ([]domain.Session, error)
	Insert(ctx context.Context, identity identitydto.Identity, session domain.Session) (domain.Session, error)
	Update(ctx context.Context, identity identitydto.Identity, session domain.Session) error
	Delete(ctx context.Context, identity identitydto.Identity, id string) error
}

// LocalCache is the per-device document. Mutate is a whole-document read-modify-write.
type LocalCache interface {
	Read(ctx context.Context) (domain.CacheDocument, error)
	Mutate(ctx context.Context, fn func(doc *domain.CacheDocument) error) error
}

type Journal interface {
	Write(ctx context.Context, session domain.Session) (string, error)
}

type IdentitySource interface {
	Current(ctx context.Context) (identitydto.Identity, error)
	Subscribe(fn func(identitydto.Identity)) (cancel func())
	Watch(ctx context.Context, interval time.Duration)
}

type ProtocolPreference interface {
	Protocol() string
	SetProtocol(protocol string) error
}
