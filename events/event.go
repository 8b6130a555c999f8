package events

import (
	"context"
	"sync"
	"time"
)

// Type names a change to the catalog or a cart.
type Type string

const (
	ProductUpdated Type = "product.updated"
	CartLineAdded  Type = "cart.line_added"
	CartCleared    Type = "cart.cleared"
)

// Event tells cache holders which record changed so they can refetch it.
// Delivery order can differ from commit order; Seq increases in commit order,
// so consumers drop an event whose Seq is not above the last one they applied
// for the same record.
type Event struct {
	Seq       uint64    `json:"seq"`
	Type      Type      `json:"type"`
	CartID    string    `json:"cartId,omitempty"`
	ProductID string    `json:"productId,omitempty"`
	At        time.Time `json:"at"`
}

// Publisher delivers events after a mutation has been committed.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// Recorder keeps published events in memory. Used in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// Events returns a copy of what has been published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
