package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	fastingout "fasttrack/internal/modules/fasting/port/out"
	identitydto "fasttrack/internal/modules/identity/dto"
)

// Runtime drives the engine while a process stays up: the per-second tick and the
// identity-change routine. Every activity it starts ends when Run returns.
type Runtime struct {
	engine       *Engine
	identity     fastingout.IdentitySource
	tick         time.Duration
	pollInterval time.Duration
	logger       *slog.Logger
	onStatus     func(Status)
}

func NewRuntime(engine *Engine, identity fastingout.IdentitySource, tick, pollInterval time.Duration, logger *slog.Logger) *Runtime {
	if tick <= 0 {
		tick = time.Second
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Runtime{engine: engine, identity: identity, tick: tick, pollInterval: pollInterval, logger: logger}
}

// OnStatus registers a callback invoked after every tick.
func (r *Runtime) OnStatus(fn func(Status)) {
	r.onStatus = fn
}

func (r *Runtime) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer func() {
		cancel()
		wg.Wait()
		r.engine.Close()
	}()

	changes := make(chan identitydto.Identity, 1)
	if r.identity != nil {
		unsubscribe := r.identity.Subscribe(func(id identitydto.Identity) {
			latest(changes, id)
		})
		defer unsubscribe()

		current, err := r.identity.Current(ctx)
		if err != nil {
			r.logger.Warn("read identity failed, running anonymous", "err", err)
		}
		latest(changes, current)

		wg.Add(1)
		go func() {
			defer wg.Done()
			r.identity.Watch(ctx, r.pollInterval)
		}()
	} else if err := r.engine.SetIdentity(ctx, identitydto.Identity{}); err != nil {
		return err
	}

	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case id := <-changes:
			if err := r.engine.SetIdentity(ctx, id); err != nil {
				r.logger.Warn("identity change handling failed", "err", err)
			}
		case <-ticker.C:
			st, err := r.engine.Status(ctx)
			if err != nil {
				r.logger.Warn("tick failed", "err", err)
			}
			if st.Finished != nil {
				r.logger.Info("fast reached its target", "id", st.Finished.ID)
			}
			if r.onStatus != nil {
				r.onStatus(st)
			}
		}
	}
}

// latest replaces any pending value so only the newest identity is handled.
func latest(ch chan identitydto.Identity, id identitydto.Identity) {
	for {
		select {
		case ch <- id:
			return
		default:
			select {
			case <-ch:
			default:
			}
		}
	}
}
