package out

import (
	"context"
	"time"

	fastingout "fasttrack/internal/modules/fasting/port/out"
	identitydto "fasttrack/internal/modules/identity/dto"
	identityin "fasttrack/internal/modules/identity/port/in"
)

// IdentityBridge narrows the identity usecase to what the fasting runtime consumes.
type IdentityBridge struct {
	identity identityin.Usecase
}

func NewIdentityBridge(identity identityin.Usecase) fastingout.IdentitySource {
	return IdentityBridge{identity: identity}
}

func (b IdentityBridge) Current(ctx context.Context) (identitydto.Identity, error) {
	return b.identity.Current(ctx)
}

func (b IdentityBridge) Subscribe(fn func(identitydto.Identity)) func() {
	return b.identity.Subscribe(fn)
}

func (b IdentityBridge) Watch(ctx context.Context, interval time.Duration) {
	b.identity.Watch(ctx, interval)
}
