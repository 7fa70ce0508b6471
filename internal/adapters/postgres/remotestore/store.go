// Package remotestore implements the cloud trip store on postgres. Each trip
// is one JSONB document scoped to its owning user. Subscriptions poll for a
// change fingerprint and push the full owner list when it moves.
package remotestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/remotestore"
)

const uniqueViolationCode = "23505"

type Store struct {
	pool *pgxpool.Pool

	// pollInterval drives the subscription loop.
	pollInterval time.Duration
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, pollInterval: 3 * time.Second}
}

func (s *Store) Create(ctx context.Context, t domain.Trip, owner domain.OwnerID) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO cloud_trips (id, owner_id, doc, updated_at)
		VALUES ($1, $2, $3, $4)`,
		string(t.ID), string(owner), doc, t.UpdatedAt.UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return remotestore.ErrAlreadyExists
		}
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// Update overlays the patch onto the stored document inside a transaction
// holding a row lock, so concurrent device patches serialize instead of
// clobbering each other.
func (s *Store) Update(ctx context.Context, id domain.TripID, p domain.TripPatch, owner domain.OwnerID) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var doc []byte
		err := tx.QueryRow(ctx, `
			SELECT doc FROM cloud_trips
			WHERE id = $1 AND owner_id = $2
			FOR UPDATE`,
			string(id), string(owner),
		).Scan(&doc)
		if errors.Is(err, pgx.ErrNoRows) {
			return remotestore.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("load trip: %w", err)
		}

		var t domain.Trip
		if err := json.Unmarshal(doc, &t); err != nil {
			return fmt.Errorf("unmarshal trip: %w", err)
		}
		p.Apply(&t)

		next, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("marshal trip: %w", err)
		}
		_, err = tx.Exec(ctx, `
			UPDATE cloud_trips SET doc = $1, updated_at = $2
			WHERE id = $3 AND owner_id = $4`,
			next, t.UpdatedAt.UTC(), string(id), string(owner),
		)
		if err != nil {
			return fmt.Errorf("update trip: %w", err)
		}
		return nil
	})
}

func (s *Store) Delete(ctx context.Context, id domain.TripID, owner domain.OwnerID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM cloud_trips WHERE id = $1 AND owner_id = $2`,
		string(id), string(owner),
	)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return remotestore.ErrNotFound
	}
	return nil
}

func (s *Store) ListByOwner(ctx context.Context, owner domain.OwnerID) ([]domain.Trip, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT doc FROM cloud_trips WHERE owner_id = $1 ORDER BY id`,
		string(owner),
	)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Trip, 0)
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		var t domain.Trip
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, fmt.Errorf("unmarshal trip: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// SubscribeToTrips polls the owner's change fingerprint and pushes the full
// list whenever it moves. The initial list is delivered before the first
// poll tick.
func (s *Store) SubscribeToTrips(ctx context.Context, owner domain.OwnerID, onChange remotestore.ChangeHandler, onError remotestore.ErrorHandler) (remotestore.Unsubscribe, error) {
	initial, err := s.ListByOwner(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("initial trip list: %w", err)
	}

	subCtx, cancel := context.WithCancel(context.Background())
	go s.pollLoop(subCtx, owner, onChange, onError)

	onChange(initial)
	return remotestore.Unsubscribe(cancel), nil
}

func (s *Store) pollLoop(ctx context.Context, owner domain.OwnerID, onChange remotestore.ChangeHandler, onError remotestore.ErrorHandler) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	last, err := s.fingerprint(ctx, owner)
	if err != nil && ctx.Err() == nil {
		onError(err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		fp, err := s.fingerprint(ctx, owner)
		if err != nil {
			if ctx.Err() == nil {
				onError(err)
			}
			continue
		}
		if fp == last {
			continue
		}
		trips, err := s.ListByOwner(ctx, owner)
		if err != nil {
			if ctx.Err() == nil {
				onError(err)
			}
			continue
		}
		last = fp
		onChange(trips)
	}
}

// fingerprint summarizes the owner's rows; any insert, update or delete
// changes it.
func (s *Store) fingerprint(ctx context.Context, owner domain.OwnerID) (string, error) {
	var count int64
	var latest *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*), MAX(updated_at) FROM cloud_trips WHERE owner_id = $1`,
		string(owner),
	).Scan(&count, &latest)
	if err != nil {
		return "", fmt.Errorf("poll trips: %w", err)
	}
	if latest == nil {
		return fmt.Sprintf("%d@", count), nil
	}
	return fmt.Sprintf("%d@%d", count, latest.UnixNano()), nil
}
