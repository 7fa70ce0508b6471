package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	memlocal "github.com/roamplan/itinerary-engine/internal/adapters/memory/localstore"
	memremote "github.com/roamplan/itinerary-engine/internal/adapters/memory/remotestore"
	memqueue "github.com/roamplan/itinerary-engine/internal/adapters/memory/syncqueue"
	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/geocoder"
	"github.com/roamplan/itinerary-engine/internal/ports/out/localstore"
)

// fakeClock advances one second per Now call so every write gets a distinct
// timestamp.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// seqIDs issues deterministic ids for stable assertions.
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%02d", prefix, g.n)
}

func (g *seqIDs) NewTripID() domain.TripID         { return domain.TripID(g.next("trip")) }
func (g *seqIDs) NewDayID() domain.DayID           { return domain.DayID(g.next("day")) }
func (g *seqIDs) NewActivityID() domain.ActivityID { return domain.ActivityID(g.next("act")) }

// flakyLocal wraps a real local store and fails selected operations.
type flakyLocal struct {
	localstore.Store
	failUpdate bool
}

var errStoreDown = errors.New("store down")

func (f *flakyLocal) Update(ctx context.Context, id domain.TripID, p domain.TripPatch) error {
	if f.failUpdate {
		return errStoreDown
	}
	return f.Store.Update(ctx, id, p)
}

type fakeGeocoder struct {
	place geocoder.Place
	err   error
}

func (g fakeGeocoder) Geocode(_ context.Context, _ string) (geocoder.Place, error) {
	return g.place, g.err
}

type fixture struct {
	svc    *Service
	local  *flakyLocal
	remote *memremote.Store
	queue  *memqueue.Queue
	clk    *fakeClock
	geo    *fakeGeocoder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		local:  &flakyLocal{Store: memlocal.NewStore()},
		remote: memremote.NewStore(),
		queue:  memqueue.NewQueue(),
		clk:    newFakeClock(),
		geo:    &fakeGeocoder{err: geocoder.ErrNotFound},
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.svc = NewService(f.local, f.remote, f.queue, &seqIDs{}, f.geo, f.clk, log)
	return f
}

func (f *fixture) mustCreateTrip(t *testing.T, title string, start, end time.Time) domain.Trip {
	t.Helper()
	trip, err := f.svc.CreateTrip(context.Background(), CreateTripInput{
		Title:     title,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	return trip
}

func (f *fixture) mustActivate(t *testing.T, id domain.TripID) {
	t.Helper()
	if err := f.svc.SetActiveTrip(context.Background(), id); err != nil {
		t.Fatalf("SetActiveTrip: %v", err)
	}
}

func (f *fixture) queueOps(t *testing.T) []string {
	t.Helper()
	entries, err := f.queue.List(context.Background())
	if err != nil {
		t.Fatalf("queue.List: %v", err)
	}
	ops := make([]string, len(entries))
	for i, e := range entries {
		ops[i] = e.Op
	}
	return ops
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
