// Package syncworker drains the durable sync queue into the cloud store.
// Entries deliver strictly in enqueue order: a failing head entry blocks
// everything behind it until it succeeds, so the cloud never sees an edit
// before the edit it depends on.
package syncworker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/roamplan/itinerary-engine/internal/app/engine"
	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

// SessionFunc reports the signed-in owner, if any. Delivery pauses while
// signed out.
type SessionFunc func() (domain.OwnerID, bool)

// SyncedFunc records that a trip's queued create reached the cloud. The
// engine's MarkTripSynced clears the local-only flag everywhere it is held,
// so later deletes know there is a cloud copy to remove.
type SyncedFunc func(ctx context.Context, id domain.TripID) error

// errNoSession pauses the loop without counting as a delivery failure.
var errNoSession = errors.New("no active session")

type Worker struct {
	queue   syncqueue.Queue
	remote  remotestore.Store
	synced  SyncedFunc
	session SessionFunc
	log     *slog.Logger

	idle time.Duration
	bo   backoff.BackOff
}

func New(queue syncqueue.Queue, remote remotestore.Store, synced SyncedFunc, session SessionFunc, log *slog.Logger) *Worker {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 2 * time.Minute
	bo.MaxElapsedTime = 0 // retry forever; the queue is durable
	return &Worker{
		queue:   queue,
		remote:  remote,
		synced:  synced,
		session: session,
		log:     log,
		idle:    5 * time.Second,
		bo:      bo,
	}
}

// Run drains the queue until ctx is cancelled. Failed deliveries back off
// exponentially; an empty queue or a signed-out session polls at the idle
// interval.
func (w *Worker) Run(ctx context.Context) {
	for {
		delivered, err := w.RunOnce(ctx)

		var wait time.Duration
		switch {
		case err == nil && delivered:
			w.bo.Reset()
			continue
		case err == nil || errors.Is(err, syncqueue.ErrEmpty) || errors.Is(err, errNoSession):
			w.bo.Reset()
			wait = w.idle
		default:
			wait = w.bo.NextBackOff()
			w.log.Warn("sync delivery failed, backing off", "wait", wait, "error", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// RunOnce delivers the head entry, if any. It returns syncqueue.ErrEmpty for
// an empty queue; delivered reports whether an entry was removed.
func (w *Worker) RunOnce(ctx context.Context) (delivered bool, err error) {
	owner, ok := w.session()
	if !ok {
		return false, errNoSession
	}

	entry, err := w.queue.Peek(ctx)
	if err != nil {
		return false, err
	}
	w.observeDepth(ctx)

	payload, err := engine.DecodePayload(entry.Payload)
	if err != nil {
		// A payload that cannot be decoded will never deliver; drop it
		// rather than wedge the queue.
		w.log.Error("dropping undecodable queue entry", "entry_id", entry.ID, "op", entry.Op, "error", err)
		droppedTotal.Inc()
		if ackErr := w.queue.Ack(ctx, entry.ID); ackErr != nil {
			return false, ackErr
		}
		return true, nil
	}

	if err := engine.Deliver(ctx, w.remote, owner, entry.Op, payload); err != nil {
		failuresTotal.WithLabelValues(entry.Op).Inc()
		if failErr := w.queue.Fail(ctx, entry.ID); failErr != nil {
			w.log.Error("record delivery failure", "entry_id", entry.ID, "error", failErr)
		}
		return false, err
	}

	if entry.Op == engine.OpTripCreate {
		if err := w.synced(ctx, payload.TripID); err != nil {
			// The cloud copy exists either way; the flag heals on the next
			// sign-in migration pass.
			w.log.Warn("mark trip as synced", "trip_id", payload.TripID, "error", err)
		}
	}

	if err := w.queue.Ack(ctx, entry.ID); err != nil {
		return false, err
	}
	deliveredTotal.WithLabelValues(entry.Op).Inc()
	w.observeDepth(ctx)
	w.log.Debug("queue entry delivered", "entry_id", entry.ID, "op", entry.Op, "trip_id", payload.TripID)
	return true, nil
}

func (w *Worker) observeDepth(ctx context.Context) {
	if n, err := w.queue.Len(ctx); err == nil {
		queueDepth.Set(float64(n))
	}
}
