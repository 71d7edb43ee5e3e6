package pubsub

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"vanta-site/internal/constants"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// NATSUpstream relays events over a core NATS subject.
type NATSUpstream struct {
	nc      *nats.Conn
	subject string
	closed  chan struct{}
	done    chan struct{}
	logger  zerolog.Logger

	mu   sync.Mutex
	sub  *nats.Subscription
	sink chan Event

	// sinkMu is held for reading by every delivery and for writing while the sink closes.
	sinkMu     sync.RWMutex
	sinkClosed bool
}

func NewNATSUpstream(url, subject string, logger zerolog.Logger) (*NATSUpstream, error) {
	closed := make(chan struct{})
	nc, err := nats.Connect(url,
		nats.Name("vanta-site"),
		nats.MaxReconnects(-1),
		nats.ClosedHandler(func(*nats.Conn) { close(closed) }),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	logger.Info().Str("url", nc.ConnectedUrl()).Str("subject", subject).Msg("connected to NATS")
	return &NATSUpstream{nc: nc, subject: subject, closed: closed, done: make(chan struct{}), logger: logger}, nil
}

func (u *NATSUpstream) Publish(event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := u.nc.Publish(u.subject, data); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}
	return nil
}

// Subscribe may be called once; the channel closes when the upstream is closed.
func (u *NATSUpstream) Subscribe() (<-chan Event, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.sub != nil {
		return nil, fmt.Errorf("already subscribed to %s", u.subject)
	}

	sink := make(chan Event, 64)
	sub, err := u.nc.Subscribe(u.subject, func(msg *nats.Msg) {
		u.deliver(sink, msg.Data)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", u.subject, err)
	}

	u.sub, u.sink = sub, sink
	return sink, nil
}

// deliver hands one message to sink, giving up once Close has begun.
func (u *NATSUpstream) deliver(sink chan<- Event, data []byte) {
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		u.logger.Warn().Err(err).Msg("dropping malformed NATS event")
		return
	}

	u.sinkMu.RLock()
	defer u.sinkMu.RUnlock()
	if u.sinkClosed {
		return
	}
	select {
	case sink <- event:
	case <-u.done:
	}
}

// closeSink waits out in-flight deliveries, which return promptly once done is closed.
func (u *NATSUpstream) closeSink() {
	u.sinkMu.Lock()
	defer u.sinkMu.Unlock()
	if u.sinkClosed || u.sink == nil {
		return
	}
	u.sinkClosed = true
	close(u.sink)
}

// Close drains the connection, then closes the sink once no handler can be sending on it.
func (u *NATSUpstream) Close() error {
	u.mu.Lock()
	defer u.mu.Unlock()

	select {
	case <-u.done:
		return nil
	default:
		close(u.done)
	}

	// Drain flushes pending publishes and waits for in-flight handlers before closing.
	if err := u.nc.Drain(); err != nil {
		u.logger.Warn().Err(err).Msg("NATS drain failed")
		u.nc.Close()
	}
	select {
	case <-u.closed:
	case <-time.After(constants.ShutdownTimeout):
		u.logger.Warn().Msg("timed out waiting for NATS to close")
		u.nc.Close()
	}
	u.closeSink()
	return nil
}
