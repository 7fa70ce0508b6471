// Package syncqueue implements the durable sync queue on sqlite. Row ids are
// monotonically increasing, so delivery order is the insert order.
package syncqueue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roamplan/itinerary-engine/internal/ports/out/syncqueue"
)

type Queue struct {
	db *sql.DB
}

func NewQueue(db *sql.DB) *Queue {
	return &Queue{db: db}
}

func (q *Queue) Enqueue(ctx context.Context, op string, payload json.RawMessage) (syncqueue.Entry, error) {
	now := time.Now().UTC()
	res, err := q.db.ExecContext(ctx, `
		INSERT INTO sync_queue (op, payload, attempts, enqueued_at)
		VALUES (?, ?, 0, ?)`,
		op, []byte(payload), now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return syncqueue.Entry{}, fmt.Errorf("insert queue entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return syncqueue.Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	return syncqueue.Entry{
		ID:         id,
		Op:         op,
		Payload:    append(json.RawMessage(nil), payload...),
		EnqueuedAt: now,
	}, nil
}

func (q *Queue) Peek(ctx context.Context) (syncqueue.Entry, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, op, payload, attempts, enqueued_at
		FROM sync_queue ORDER BY id LIMIT 1`)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return syncqueue.Entry{}, syncqueue.ErrEmpty
	}
	return e, err
}

func (q *Queue) Ack(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("ack queue entry: %w", err)
	}
	return nil
}

func (q *Queue) Fail(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `UPDATE sync_queue SET attempts = attempts + 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("record failed attempt: %w", err)
	}
	return nil
}

func (q *Queue) List(ctx context.Context) ([]syncqueue.Entry, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, op, payload, attempts, enqueued_at
		FROM sync_queue ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list queue: %w", err)
	}
	defer rows.Close()

	out := make([]syncqueue.Entry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (q *Queue) Len(ctx context.Context) (int, error) {
	var n int
	if err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sync_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count queue: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (syncqueue.Entry, error) {
	var (
		e      syncqueue.Entry
		raw    []byte
		atText string
	)
	if err := row.Scan(&e.ID, &e.Op, &raw, &e.Attempts, &atText); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return syncqueue.Entry{}, err
		}
		return syncqueue.Entry{}, fmt.Errorf("scan queue entry: %w", err)
	}
	e.Payload = json.RawMessage(raw)
	at, err := time.Parse(time.RFC3339Nano, atText)
	if err != nil {
		return syncqueue.Entry{}, fmt.Errorf("parse enqueued_at: %w", err)
	}
	e.EnqueuedAt = at
	return e, nil
}
