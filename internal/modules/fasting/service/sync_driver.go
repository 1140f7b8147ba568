package service

import (
	"context"
	"log/slog"
	"time"
)

type PushFunc func(ctx context.Context) error

// SyncDriver pushes the in-progress session immediately and then on every interval
// until stopped. Stop cancels an in-flight push and waits for it to return.
type SyncDriver struct {
	push     PushFunc
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func StartSyncDriver(parent context.Context, interval time.Duration, push PushFunc, logger *slog.Logger) *SyncDriver {
	ctx, cancel := context.WithCancel(parent)
	d := &SyncDriver{
		push:     push,
		interval: interval,
		logger:   logger,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go d.loop(ctx)
	return d
}

func (d *SyncDriver) loop(ctx context.Context) {
	defer close(d.done)
	d.pushOnce(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.pushOnce(ctx)
		}
	}
}

func (d *SyncDriver) pushOnce(ctx context.Context) {
	if err := d.push(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		d.logger.Warn("sync push failed", "err", err)
		return
	}
	d.logger.Debug("sync push ok")
}

// Stop is safe on a nil driver and may be called more than once.
func (d *SyncDriver) Stop() {
	if d == nil {
		return
	}
	d.cancel()
	<-d.done
}
