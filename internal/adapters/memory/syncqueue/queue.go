package syncqueue

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

// Queue is an in-memory FIFO implementation of syncqueue.Queue.
// It is safe for concurrent use.
type Queue struct {
	mu      sync.Mutex
	nextID  int64
	entries []syncqueue.Entry
	now     func() time.Time
}

func NewQueue() *Queue {
	return &Queue{nextID: 1, now: func() time.Time { return time.Now().UTC() }}
}

func (q *Queue) Enqueue(ctx context.Context, op string, payload json.RawMessage) (syncqueue.Entry, error) {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	e := syncqueue.Entry{
		ID:         q.nextID,
		Op:         op,
		Payload:    append(json.RawMessage(nil), payload...),
		EnqueuedAt: q.now(),
	}
	q.nextID++
	q.entries = append(q.entries, e)
	return e, nil
}

func (q *Queue) Peek(ctx context.Context) (syncqueue.Entry, error) {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return syncqueue.Entry{}, syncqueue.ErrEmpty
	}
	return q.entries[0], nil
}

func (q *Queue) Ack(ctx context.Context, id int64) error {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.entries {
		if e.ID == id {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return nil
		}
	}
	return nil
}

func (q *Queue) Fail(ctx context.Context, id int64) error {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.entries {
		if q.entries[i].ID == id {
			q.entries[i].Attempts++
			return nil
		}
	}
	return nil
}

func (q *Queue) List(ctx context.Context) ([]syncqueue.Entry, error) {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]syncqueue.Entry, len(q.entries))
	copy(out, q.entries)
	return out, nil
}

func (q *Queue) Len(ctx context.Context) (int, error) {
	_ = ctx
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries), nil
}
