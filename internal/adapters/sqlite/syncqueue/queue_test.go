package syncqueue

import (
	"context"
	"testing"

	"github.com/roamplan/itinerary-engine/internal/adapters/contracttest"
	"github.com/roamplan/itinerary-engine/internal/adapters/sqlite"
	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

func TestQueueContract(t *testing.T) {
	contracttest.RunSyncQueue(t, func(t *testing.T) syncqueue.Queue {
		db, err := sqlite.Open(context.Background(), ":memory:")
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		t.Cleanup(func() { db.Close() })
		return NewQueue(db)
	})
}
