package syncqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"
)

var ErrEmpty = errors.New("sync queue is empty")

// Entry is one pending remote operation. The queue never interprets the
// payload; it is an opaque operation descriptor owned by the engine.
type Entry struct {
	ID         int64
	Op         string
	Payload    json.RawMessage
	Attempts   int
	EnqueuedAt time.Time
}

// Queue is a durable FIFO of pending remote mutations, per installation.
// Delivery order equals enqueue order; an entry is removed only after the
// remote store acknowledged it.
type Queue interface {
	// Enqueue appends an entry and returns once it is durably stored.
	Enqueue(ctx context.Context, op string, payload json.RawMessage) (Entry, error)

	// Peek returns the head entry without removing it, or ErrEmpty.
	Peek(ctx context.Context) (Entry, error)

	// Ack removes a delivered entry.
	Ack(ctx context.Context, id int64) error

	// Fail records a delivery attempt; the entry stays at the head so
	// later entries cannot overtake it.
	Fail(ctx context.Context, id int64) error

	// List returns all pending entries in delivery order.
	List(ctx context.Context) ([]Entry, error)

	Len(ctx context.Context) (int, error)
}
