package contracttest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

// RunSyncQueue exercises the syncqueue.Queue contract against a fresh queue
// from newQueue.
func RunSyncQueue(t *testing.T, newQueue func(t *testing.T) syncqueue.Queue) {
	t.Helper()
	ctx := context.Background()
	payload := func(s string) json.RawMessage { return json.RawMessage(`{"v":"` + s + `"}`) }

	t.Run("peek on empty queue", func(t *testing.T) {
		q := newQueue(t)
		if _, err := q.Peek(ctx); !errors.Is(err, syncqueue.ErrEmpty) {
			t.Fatalf("err = %v, want ErrEmpty", err)
		}
	})

	t.Run("fifo order survives ack", func(t *testing.T) {
		q := newQueue(t)
		for _, s := range []string{"a", "b", "c"} {
			if _, err := q.Enqueue(ctx, "op."+s, payload(s)); err != nil {
				t.Fatalf("Enqueue: %v", err)
			}
		}
		for _, want := range []string{"op.a", "op.b", "op.c"} {
			head, err := q.Peek(ctx)
			if err != nil {
				t.Fatalf("Peek: %v", err)
			}
			if head.Op != want {
				t.Fatalf("head op = %q, want %q", head.Op, want)
			}
			if err := q.Ack(ctx, head.ID); err != nil {
				t.Fatalf("Ack: %v", err)
			}
		}
		if n, err := q.Len(ctx); err != nil || n != 0 {
			t.Fatalf("len = %d err = %v, want empty", n, err)
		}
	})

	t.Run("fail keeps the entry at the head and counts attempts", func(t *testing.T) {
		q := newQueue(t)
		first, err := q.Enqueue(ctx, "op.first", payload("1"))
		if err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		if _, err := q.Enqueue(ctx, "op.second", payload("2")); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}

		if err := q.Fail(ctx, first.ID); err != nil {
			t.Fatalf("Fail: %v", err)
		}
		if err := q.Fail(ctx, first.ID); err != nil {
			t.Fatalf("Fail: %v", err)
		}

		head, err := q.Peek(ctx)
		if err != nil {
			t.Fatalf("Peek: %v", err)
		}
		if head.ID != first.ID {
			t.Fatalf("head id = %d, want the failing entry %d", head.ID, first.ID)
		}
		if head.Attempts != 2 {
			t.Fatalf("attempts = %d, want 2", head.Attempts)
		}
	})

	t.Run("payload round-trips byte for byte", func(t *testing.T) {
		q := newQueue(t)
		raw := json.RawMessage(`{"tripId":"t1","patch":{"title":"x"}}`)
		if _, err := q.Enqueue(ctx, "op", raw); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
		head, err := q.Peek(ctx)
		if err != nil {
			t.Fatalf("Peek: %v", err)
		}
		if string(head.Payload) != string(raw) {
			t.Fatalf("payload = %s, want %s", head.Payload, raw)
		}
	})

	t.Run("list returns delivery order", func(t *testing.T) {
		q := newQueue(t)
		for _, s := range []string{"a", "b"} {
			if _, err := q.Enqueue(ctx, "op."+s, payload(s)); err != nil {
				t.Fatalf("Enqueue: %v", err)
			}
		}
		entries, err := q.List(ctx)
		if err != nil {
			t.Fatalf("List: %v", err)
		}
		if len(entries) != 2 || entries[0].Op != "op.a" || entries[1].Op != "op.b" {
			t.Fatalf("entries = %+v", entries)
		}
	})
}
