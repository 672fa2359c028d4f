// Package realtime fans booking and draft events out to admin dashboards.
// Events go through a Broker (Redis pub/sub in production, in-process for a
// single instance) and the Hub relays them to WebSocket clients.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

const (
	EventBookingCreated = "booking.created"
	EventBookingUpdated = "booking.updated"
	EventDraftSaved     = "draft.saved"
	EventFleetUpdated   = "fleet.updated"
)

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
	At   time.Time       `json:"at"`
}

// NewEvent marshals v as the event payload.
func NewEvent(typ string, v any) (Event, error) {
	e := Event{Type: typ, At: time.Now().UTC()}
	if v != nil {
		raw, err := json.Marshal(v)
		if err != nil {
			return e, err
		}
		e.Data = raw
	}
	return e, nil
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Broker interface {
	Publisher
	// Subscribe returns a channel of events until cancel is called or ctx ends.
	Subscribe(ctx context.Context) (<-chan Event, func(), error)
	Close() error
}

// MemoryBroker delivers events to subscribers in the same process. A full
// subscriber buffer drops the event for that subscriber only.
type MemoryBroker struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	next   int
	buffer int
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{subs: map[int]chan Event{}, buffer: 64}
}

func (b *MemoryBroker) Publish(_ context.Context, e Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan Event, func(), error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}, nil
	}
	id := b.next
	b.next++
	b.subs[id] = ch

	done := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			b.remove(id)
		})
	}
	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-done:
		}
	}()
	return ch, cancel, nil
}

func (b *MemoryBroker) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
	return nil
}

// PublishEvent builds and publishes an event, for callers that only log
// failures.
func PublishEvent(ctx context.Context, p Publisher, typ string, v any) error {
	if p == nil {
		return nil
	}
	e, err := NewEvent(typ, v)
	if err != nil {
		return err
	}
	return p.Publish(ctx, e)
}
