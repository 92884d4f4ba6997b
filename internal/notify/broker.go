package notify

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/reposhelf/internal/logging"
)

// DefaultBuffer is the per-subscriber queue length used when none is given.
const DefaultBuffer = 16

// Broker is an in-process Notifier. Each subscriber has a bounded queue;
// events that do not fit are dropped and logged.
type Broker struct {
	mu     sync.RWMutex
	subs   map[*brokerSub]struct{}
	buffer int
	log    logging.Logger
}

// NewBroker creates a Broker. A buffer <= 0 selects DefaultBuffer.
func NewBroker(buffer int, log logging.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = logging.Nop()
	}
	return &Broker{subs: map[*brokerSub]struct{}{}, buffer: buffer, log: log}
}

func (b *Broker) Notify(ctx context.Context, address string) error {
	ev := NewEvent(address)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for s := range b.subs {
		if !Matches(s.address, address) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			b.log.Warn(ctx, "subscriber queue full, event dropped",
				"subscriber", s.address, "address", address, "event", ev.ID.String())
		}
	}
	return nil
}

func (b *Broker) Subscribe(_ context.Context, address string) (Subscription, error) {
	s := &brokerSub{broker: b, address: address, ch: make(chan Event, b.buffer)}

	b.mu.Lock()
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	return s, nil
}

// Subscribers returns the number of live subscriptions.
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

type brokerSub struct {
	broker  *Broker
	address string
	ch      chan Event
	once    sync.Once
}

func (s *brokerSub) Events() <-chan Event { return s.ch }

func (s *brokerSub) Close() error {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subs, s)
		s.broker.mu.Unlock()
		close(s.ch)
	})
	return nil
}
