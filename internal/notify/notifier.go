// Package notify delivers change notifications for repo addresses.
//
// An address is either the collection ("repos") or a single record
// ("repos/{id}"). A subscriber to the collection sees every event. A
// subscriber to a single record sees events for that record and events
// published for the whole collection.
//
// Delivery is best-effort: Notify hands the event to the transport and
// returns; slow subscribers may miss events.
package notify

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event describes one change to the repo table.
type Event struct {
	ID      uuid.UUID `json:"id"`
	Address string    `json:"address"`
	At      time.Time `json:"at"`
}

// NewEvent stamps a fresh event for address.
func NewEvent(address string) Event {
	return Event{ID: uuid.New(), Address: address, At: time.Now().UTC()}
}

// Notifier publishes change events and lets observers register interest.
type Notifier interface {
	Notify(ctx context.Context, address string) error
	Subscribe(ctx context.Context, address string) (Subscription, error)
}

// Subscription is a registered observer. Events is closed after Close.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Matches reports whether an event published for event should reach a
// subscriber registered for sub.
func Matches(sub, event string) bool {
	if sub == event {
		return true
	}
	return strings.HasPrefix(event, sub+"/") || strings.HasPrefix(sub, event+"/")
}

// Discard is a Notifier that drops everything.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Notify(context.Context, string) error { return nil }

func (discard) Subscribe(context.Context, string) (Subscription, error) {
	ch := make(chan Event)
	close(ch)
	return closedSub(ch), nil
}

type closedSub chan Event

func (c closedSub) Events() <-chan Event { return c }
func (closedSub) Close() error           { return nil }
