package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/reposhelf/internal/logging"
	"github.com/redis/go-redis/v9"
)

// DefaultChannelPrefix namespaces the pub/sub channels used by RedisNotifier.
const DefaultChannelPrefix = "reposhelf:"

// redisClient is the part of go-redis used here. *redis.Client and
// *redis.ClusterClient satisfy it.
type redisClient interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
	PSubscribe(ctx context.Context, channels ...string) *redis.PubSub
}

// RedisNotifier publishes each event on the channel prefix+address so that
// observers in other processes see changes too.
type RedisNotifier struct {
	client redisClient
	prefix string
	buffer int
	log    logging.Logger
}

// NewRedisNotifier wraps an existing client. An empty prefix selects
// DefaultChannelPrefix.
func NewRedisNotifier(client redisClient, prefix string, buffer int, log logging.Logger) *RedisNotifier {
	if prefix == "" {
		prefix = DefaultChannelPrefix
	}
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = logging.Nop()
	}
	return &RedisNotifier{client: client, prefix: prefix, buffer: buffer, log: log}
}

// NewRedisClient opens a client from plain settings.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
}

// Channel returns the pub/sub channel for address.
func (n *RedisNotifier) Channel(address string) string {
	return n.prefix + address
}

func (n *RedisNotifier) Notify(ctx context.Context, address string) error {
	payload, err := json.Marshal(NewEvent(address))
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := n.client.Publish(ctx, n.Channel(address), payload).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", address, err)
	}
	return nil
}

// Subscribe listens on every channel under the prefix and keeps the events
// that match address.
func (n *RedisNotifier) Subscribe(ctx context.Context, address string) (Subscription, error) {
	ps := n.client.PSubscribe(ctx, n.prefix+"*")
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", address, err)
	}

	s := &redisSub{ps: ps, ch: make(chan Event, n.buffer), done: make(chan struct{})}
	go s.pump(ctx, n, address)
	return s, nil
}

func (n *RedisNotifier) decode(msg *redis.Message) (Event, bool) {
	var ev Event
	if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
		return Event{}, false
	}
	if ev.Address == "" {
		ev.Address = strings.TrimPrefix(msg.Channel, n.prefix)
	}
	return ev, true
}

type redisSub struct {
	ps   *redis.PubSub
	ch   chan Event
	done chan struct{}
	once sync.Once
}

func (s *redisSub) pump(ctx context.Context, n *RedisNotifier, address string) {
	defer close(s.ch)
	msgs := s.ps.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			ev, ok := n.decode(msg)
			if !ok {
				n.log.Warn(ctx, "malformed notification", "channel", msg.Channel)
				continue
			}
			if !Matches(address, ev.Address) {
				continue
			}
			select {
			case s.ch <- ev:
			default:
				n.log.Warn(ctx, "subscriber queue full, event dropped",
					"subscriber", address, "address", ev.Address)
			}
		}
	}
}

func (s *redisSub) Events() <-chan Event { return s.ch }

func (s *redisSub) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.ps.Close()
	})
	return err
}
