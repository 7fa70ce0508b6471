package syncworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	memlocal "github.com/roamplan/itinerary-engine/internal/adapters/memory/localstore"
	memqueue "github.com/roamplan/itinerary-engine/internal/adapters/memory/syncqueue"
	"github.com/roamplan/itinerary-engine/internal/app/engine"
	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/geocoder"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

// scriptedRemote records delivery order and fails the trip ids listed in
// failing until they are cleared.
type scriptedRemote struct {
	mu        sync.Mutex
	delivered []string
	failing   map[domain.TripID]bool
	created   map[domain.TripID]bool
}

func newScriptedRemote() *scriptedRemote {
	return &scriptedRemote{
		failing: make(map[domain.TripID]bool),
		created: make(map[domain.TripID]bool),
	}
}

var errCloudDown = errors.New("cloud down")

func (r *scriptedRemote) record(op string, id domain.TripID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing[id] {
		return errCloudDown
	}
	r.delivered = append(r.delivered, op+":"+string(id))
	return nil
}

func (r *scriptedRemote) Create(_ context.Context, t domain.Trip, _ domain.OwnerID) error {
	r.mu.Lock()
	already := r.created[t.ID]
	r.mu.Unlock()
	if already {
		return remotestore.ErrAlreadyExists
	}
	if err := r.record(engine.OpTripCreate, t.ID); err != nil {
		return err
	}
	r.mu.Lock()
	r.created[t.ID] = true
	r.mu.Unlock()
	return nil
}

func (r *scriptedRemote) Update(_ context.Context, id domain.TripID, _ domain.TripPatch, _ domain.OwnerID) error {
	return r.record(engine.OpTripUpdate, id)
}

func (r *scriptedRemote) Delete(_ context.Context, id domain.TripID, _ domain.OwnerID) error {
	return r.record(engine.OpTripDelete, id)
}

func (r *scriptedRemote) ListByOwner(_ context.Context, _ domain.OwnerID) ([]domain.Trip, error) {
	return nil, nil
}

func (r *scriptedRemote) SubscribeToTrips(_ context.Context, _ domain.OwnerID, _ remotestore.ChangeHandler, _ remotestore.ErrorHandler) (remotestore.Unsubscribe, error) {
	return func() {}, nil
}

func (r *scriptedRemote) deliveredOps() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.delivered...)
}

type workerFixture struct {
	worker *Worker
	queue  *memqueue.Queue
	remote *scriptedRemote
	local  *memlocal.Store
	online bool
}

func newWorkerFixture(t *testing.T) *workerFixture {
	t.Helper()
	f := &workerFixture{
		queue:  memqueue.NewQueue(),
		remote: newScriptedRemote(),
		local:  memlocal.NewStore(),
		online: true,
	}
	session := func() (domain.OwnerID, bool) {
		if f.online {
			return "owner-1", true
		}
		return "", false
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	synced := func(ctx context.Context, id domain.TripID) error {
		return f.local.MarkAsSynced(ctx, id)
	}
	f.worker = New(f.queue, f.remote, synced, session, log)
	return f
}

func (f *workerFixture) enqueueUpdate(t *testing.T, id domain.TripID) {
	t.Helper()
	title := "t"
	raw, err := engine.EncodePayload(engine.QueuePayload{
		TripID: id,
		Patch:  &domain.TripPatch{Title: &title},
	})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if _, err := f.queue.Enqueue(context.Background(), engine.OpTripUpdate, raw); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
}

func TestRunOnce_DeliversInOrder(t *testing.T) {
	t.Parallel()
	f := newWorkerFixture(t)
	ctx := context.Background()
	f.enqueueUpdate(t, "trip-1")
	f.enqueueUpdate(t, "trip-2")

	for i := 0; i < 2; i++ {
		if ok, err := f.worker.RunOnce(ctx); err != nil || !ok {
			t.Fatalf("RunOnce #%d: delivered=%v err=%v", i, ok, err)
		}
	}
	if _, err := f.worker.RunOnce(ctx); !errors.Is(err, syncqueue.ErrEmpty) {
		t.Fatalf("err = %v, want ErrEmpty", err)
	}

	want := []string{"trip.update:trip-1", "trip.update:trip-2"}
	got := f.remote.deliveredOps()
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("delivered %v, want %v", got, want)
	}
}

func TestFailedHeadBlocksLaterEntries(t *testing.T) {
	t.Parallel()
	f := newWorkerFixture(t)
	ctx := context.Background()
	f.enqueueUpdate(t, "trip-1")
	f.enqueueUpdate(t, "trip-2")
	f.enqueueUpdate(t, "trip-3")
	f.remote.failing["trip-1"] = true

	for i := 0; i < 3; i++ {
		if ok, err := f.worker.RunOnce(ctx); ok || !errors.Is(err, errCloudDown) {
			t.Fatalf("attempt %d: delivered=%v err=%v, want blocked head", i, ok, err)
		}
	}
	if got := f.remote.deliveredOps(); len(got) != 0 {
		t.Fatalf("delivered %v while head was failing, want nothing", got)
	}
	head, err := f.queue.Peek(ctx)
	if err != nil {
		t.Fatalf("Peek: %v", err)
	}
	if head.Attempts != 3 {
		t.Fatalf("head attempts = %d, want 3", head.Attempts)
	}

	f.remote.failing = map[domain.TripID]bool{}
	for i := 0; i < 3; i++ {
		if ok, err := f.worker.RunOnce(ctx); err != nil || !ok {
			t.Fatalf("recovery RunOnce #%d: delivered=%v err=%v", i, ok, err)
		}
	}
	want := []string{"trip.update:trip-1", "trip.update:trip-2", "trip.update:trip-3"}
	got := f.remote.deliveredOps()
	if len(got) != 3 {
		t.Fatalf("delivered %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivered %v, want %v in order", got, want)
		}
	}
}

func TestSignedOutPausesDelivery(t *testing.T) {
	t.Parallel()
	f := newWorkerFixture(t)
	f.online = false
	f.enqueueUpdate(t, "trip-1")

	if ok, err := f.worker.RunOnce(context.Background()); ok || !errors.Is(err, errNoSession) {
		t.Fatalf("delivered=%v err=%v, want paused", ok, err)
	}
	if n, _ := f.queue.Len(context.Background()); n != 1 {
		t.Fatalf("queue len = %d, want entry retained", n)
	}
}

func TestCreateDeliveryMarksTripSynced(t *testing.T) {
	t.Parallel()
	f := newWorkerFixture(t)
	ctx := context.Background()

	trip := domain.Trip{
		ID:          "trip-1",
		Title:       "Queued Create",
		StartDate:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		IsLocalOnly: true,
		Version:     1,
	}
	if err := f.local.Create(ctx, trip); err != nil {
		t.Fatalf("local.Create: %v", err)
	}
	raw, err := engine.EncodePayload(engine.QueuePayload{TripID: trip.ID, Trip: &trip})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if _, err := f.queue.Enqueue(ctx, engine.OpTripCreate, raw); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if ok, err := f.worker.RunOnce(ctx); err != nil || !ok {
		t.Fatalf("RunOnce: delivered=%v err=%v", ok, err)
	}
	stored, err := f.local.GetByID(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.IsLocalOnly {
		t.Fatal("trip not marked as synced after delivered create")
	}
}

func TestRetriedCreateAgainstExistingCloudCopySucceeds(t *testing.T) {
	t.Parallel()
	f := newWorkerFixture(t)
	ctx := context.Background()

	trip := domain.Trip{ID: "trip-1", Title: "Dup", IsLocalOnly: true, Version: 1}
	if err := f.local.Create(ctx, trip); err != nil {
		t.Fatalf("local.Create: %v", err)
	}
	f.remote.created[trip.ID] = true // an earlier attempt reached the cloud

	raw, err := engine.EncodePayload(engine.QueuePayload{TripID: trip.ID, Trip: &trip})
	if err != nil {
		t.Fatalf("EncodePayload: %v", err)
	}
	if _, err := f.queue.Enqueue(ctx, engine.OpTripCreate, raw); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if ok, err := f.worker.RunOnce(ctx); err != nil || !ok {
		t.Fatalf("RunOnce: delivered=%v err=%v", ok, err)
	}
	if n, _ := f.queue.Len(ctx); n != 0 {
		t.Fatalf("queue len = %d, want acked", n)
	}
	stored, err := f.local.GetByID(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.IsLocalOnly {
		t.Fatal("duplicate create must still mark the trip as synced")
	}
}

type stubGen struct {
	mu                sync.Mutex
	trips, days, acts int
}

func (g *stubGen) NewTripID() domain.TripID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.trips++
	return domain.TripID(fmt.Sprintf("trip-%02d", g.trips))
}

func (g *stubGen) NewDayID() domain.DayID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.days++
	return domain.DayID(fmt.Sprintf("day-%02d", g.days))
}

func (g *stubGen) NewActivityID() domain.ActivityID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.acts++
	return domain.ActivityID(fmt.Sprintf("act-%02d", g.acts))
}

type noGeocoder struct{}

func (noGeocoder) Geocode(context.Context, string) (geocoder.Place, error) {
	return geocoder.Place{}, geocoder.ErrNotFound
}

type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

// A trip whose create went through the queue must still be deletable from the
// cloud afterwards: the delivered create has to clear the engine's in-memory
// local-only flag, not just the local store's.
func TestDeleteAfterQueuedCreateDeliveryRemovesCloudCopy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	local := memlocal.NewStore()
	queue := memqueue.NewQueue()
	remote := newScriptedRemote()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clk := &tickingClock{t: time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)}
	svc := engine.NewService(local, remote, queue, &stubGen{}, noGeocoder{}, clk, log)
	worker := New(queue, remote, svc.MarkTripSynced, svc.Session, log)

	if err := svc.SignIn(ctx, "owner-1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	remote.mu.Lock()
	remote.failing["trip-01"] = true
	remote.mu.Unlock()

	trip, err := svc.CreateTrip(ctx, engine.CreateTripInput{
		Title:     "Cloud Bound",
		StartDate: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("CreateTrip: %v", err)
	}
	if n, _ := queue.Len(ctx); n != 1 {
		t.Fatalf("queue len = %d, want the fallback create", n)
	}

	remote.mu.Lock()
	remote.failing = map[domain.TripID]bool{}
	remote.mu.Unlock()
	if ok, err := worker.RunOnce(ctx); err != nil || !ok {
		t.Fatalf("RunOnce: delivered=%v err=%v", ok, err)
	}

	got, err := svc.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}
	if got.IsLocalOnly {
		t.Fatal("delivered create left the in-memory trip flagged local-only")
	}

	if err := svc.DeleteTrip(ctx, trip.ID); err != nil {
		t.Fatalf("DeleteTrip: %v", err)
	}
	ops := remote.deliveredOps()
	if len(ops) != 2 || ops[0] != "trip.create:trip-01" || ops[1] != "trip.delete:trip-01" {
		t.Fatalf("delivered ops = %v, want create then delete", ops)
	}
	if n, _ := queue.Len(ctx); n != 0 {
		t.Fatalf("queue len = %d, want empty after direct delete", n)
	}
}

func TestUndecodablePayloadDropped(t *testing.T) {
	t.Parallel()
	f := newWorkerFixture(t)
	ctx := context.Background()

	if _, err := f.queue.Enqueue(ctx, engine.OpTripUpdate, json.RawMessage(`{not json`)); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	f.enqueueUpdate(t, "trip-2")

	if ok, err := f.worker.RunOnce(ctx); err != nil || !ok {
		t.Fatalf("RunOnce on poison entry: delivered=%v err=%v", ok, err)
	}
	if ok, err := f.worker.RunOnce(ctx); err != nil || !ok {
		t.Fatalf("RunOnce after poison: delivered=%v err=%v", ok, err)
	}
	got := f.remote.deliveredOps()
	if len(got) != 1 || got[0] != "trip.update:trip-2" {
		t.Fatalf("delivered %v, want only trip-2", got)
	}
}
