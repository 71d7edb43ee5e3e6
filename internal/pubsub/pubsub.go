// Package pubsub signals re-renders to connected pages after a mutation is persisted.
package pubsub

import (
	"sync"

	"vanta-site/internal/constants"

	"github.com/rs/zerolog"
)

const (
	MarketListing = "market:listing"
	MarketOrder   = "market:order"
	MarketRemove  = "market:remove"
	MarketImport  = "market:import"
	MarketUser    = "market:user"
	TeamSnapshot  = "team:snapshot"
)

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload,omitempty"`
}

// Upstream fans events out across processes.
type Upstream interface {
	Publish(Event) error
	Subscribe() (<-chan Event, error)
	Close() error
}

type PubSub struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
	upstream    Upstream
	logger      zerolog.Logger
}

func New(logger zerolog.Logger) *PubSub {
	return &PubSub{logger: logger}
}

// NewWithUpstream publishes through upstream and forwards whatever it delivers to local subscribers,
// including this process's own events.
func NewWithUpstream(upstream Upstream, logger zerolog.Logger) (*PubSub, error) {
	ch, err := upstream.Subscribe()
	if err != nil {
		return nil, err
	}

	ps := &PubSub{upstream: upstream, logger: logger}
	go func() {
		for event := range ch {
			ps.publishLocal(event)
		}
		ps.logger.Debug().Msg("upstream event channel closed")
	}()
	return ps, nil
}

// Subscribe after Close returns an already-closed channel.
func (ps *PubSub) Subscribe() chan Event {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan Event, constants.EventBuffer)
	if ps.closed {
		close(ch)
		return ch
	}
	ps.subscribers = append(ps.subscribers, ch)
	ps.logger.Debug().Int("subscribers", len(ps.subscribers)).Msg("subscriber added")
	return ch
}

func (ps *PubSub) Unsubscribe(ch chan Event) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for i, sub := range ps.subscribers {
		if sub == ch {
			close(ch)
			ps.subscribers = append(ps.subscribers[:i], ps.subscribers[i+1:]...)
			break
		}
	}
}

// Publish never blocks on slow subscribers; a full buffer drops the event for that subscriber.
func (ps *PubSub) Publish(event Event) {
	if ps.upstream != nil {
		err := ps.upstream.Publish(event)
		if err == nil {
			return
		}
		ps.logger.Warn().Err(err).Str("type", event.Type).Msg("upstream publish failed, delivering locally")
	}
	ps.publishLocal(event)
}

func (ps *PubSub) publishLocal(event Event) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, ch := range ps.subscribers {
		select {
		case ch <- event:
		default:
			ps.logger.Debug().Str("type", event.Type).Msg("subscriber buffer full, dropping event")
		}
	}
}

func (ps *PubSub) Close() error {
	ps.mu.Lock()
	if ps.closed {
		ps.mu.Unlock()
		return nil
	}
	ps.closed = true
	for _, ch := range ps.subscribers {
		close(ch)
	}
	ps.subscribers = nil
	ps.mu.Unlock()

	if ps.upstream != nil {
		return ps.upstream.Close()
	}
	return nil
}
