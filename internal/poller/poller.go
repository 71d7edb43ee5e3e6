// Package poller refreshes read-only widgets on a fixed interval, independent of requests.
package poller

import (
	"context"
	"sync"
	"time"

	"vanta-site/internal/constants"

	"github.com/rs/zerolog"
)

// Poller fetches once immediately and then on every tick until stopped.
// A failed fetch keeps the previous value.
type Poller[T any] struct {
	name     string
	interval time.Duration
	fetch    func(context.Context) (T, error)
	logger   zerolog.Logger

	mu     sync.RWMutex
	latest T
	at     time.Time
	ok     bool

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func New[T any](name string, interval time.Duration, fetch func(context.Context) (T, error), logger zerolog.Logger) *Poller[T] {
	return &Poller[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		logger:   logger.With().Str("poller", name).Logger(),
	}
}

// Start is a no-op while the poller is already running. The loop lives until Stop
// or until ctx is cancelled.
func (p *Poller[T]) Start(ctx context.Context) {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(ctx, p.done)
	p.logger.Info().Dur("interval", p.interval).Msg("poller started")
}

func (p *Poller[T]) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller[T]) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	v, err := p.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn().Err(err).Msg("poll failed, keeping previous value")
		}
		return
	}

	p.mu.Lock()
	p.latest, p.at, p.ok = v, time.Now(), true
	p.mu.Unlock()
}

// Stop cancels the loop and waits for an in-flight fetch to return.
func (p *Poller[T]) Stop() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel == nil {
		return
	}

	p.cancel()
	<-p.done
	p.cancel, p.done = nil, nil
	p.logger.Info().Msg("poller stopped")
}

func (p *Poller[T]) Running() bool {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	return p.cancel != nil
}

// Latest returns the last successful value and when it was fetched; ok is false before the first success.
func (p *Poller[T]) Latest() (T, time.Time, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.latest, p.at, p.ok
}
