// Package localstore implements the durable on-device trip store on sqlite.
// Trips are stored as one JSON document per row, with the columns the store
// queries on kept alongside.
package localstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/roamplan/itinerary-engine/internal/domain"
	"github.com/roamplan/itinerary-engine/internal/ports/out/localstore"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, t domain.Trip) error {
	doc, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trips (id, doc, is_local_only, start_date, created_at, updated_at, last_accessed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(t.ID), string(doc), boolInt(t.IsLocalOnly),
		fmtTime(t.StartDate), fmtTime(t.CreatedAt), fmtTime(t.UpdatedAt), fmtTime(t.LastAccessedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return localstore.ErrAlreadyExists
		}
		return fmt.Errorf("insert trip: %w", err)
	}
	return nil
}

// Update reads the stored document, overlays the patch and writes the result
// back in one transaction, so concurrent patches never interleave partially.
func (s *Store) Update(ctx context.Context, id domain.TripID, p domain.TripPatch) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var doc string
	err = tx.QueryRowContext(ctx, `SELECT doc FROM trips WHERE id = ?`, string(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return localstore.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load trip: %w", err)
	}

	var t domain.Trip
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return fmt.Errorf("unmarshal trip: %w", err)
	}
	p.Apply(&t)

	next, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal trip: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE trips
		SET doc = ?, is_local_only = ?, start_date = ?, updated_at = ?, last_accessed_at = ?
		WHERE id = ?`,
		string(next), boolInt(t.IsLocalOnly), fmtTime(t.StartDate), fmtTime(t.UpdatedAt), fmtTime(t.LastAccessedAt),
		string(id),
	)
	if err != nil {
		return fmt.Errorf("update trip: %w", err)
	}
	return tx.Commit()
}

func (s *Store) Delete(ctx context.Context, id domain.TripID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trips WHERE id = ?`, string(id))
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return localstore.ErrNotFound
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, id domain.TripID) (domain.Trip, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM trips WHERE id = ?`, string(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Trip{}, localstore.ErrNotFound
	}
	if err != nil {
		return domain.Trip{}, fmt.Errorf("load trip: %w", err)
	}
	return decodeTrip(doc)
}

func (s *Store) GetAll(ctx context.Context) ([]domain.Trip, error) {
	return s.queryTrips(ctx, `SELECT doc FROM trips ORDER BY start_date, created_at, id`)
}

func (s *Store) GetLocalOnly(ctx context.Context) ([]domain.Trip, error) {
	return s.queryTrips(ctx, `SELECT doc FROM trips WHERE is_local_only = 1 ORDER BY start_date, created_at, id`)
}

func (s *Store) MarkAsSynced(ctx context.Context, id domain.TripID) error {
	f := false
	return s.Update(ctx, id, domain.TripPatch{IsLocalOnly: &f})
}

func (s *Store) Touch(ctx context.Context, id domain.TripID, at time.Time) error {
	at = at.UTC()
	return s.Update(ctx, id, domain.TripPatch{LastAccessedAt: &at})
}

func (s *Store) queryTrips(ctx context.Context, query string) ([]domain.Trip, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query trips: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Trip, 0)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan trip: %w", err)
		}
		t, err := decodeTrip(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func decodeTrip(doc string) (domain.Trip, error) {
	var t domain.Trip
	if err := json.Unmarshal([]byte(doc), &t); err != nil {
		return domain.Trip{}, fmt.Errorf("unmarshal trip: %w", err)
	}
	return t, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func fmtTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint failures in the error text;
	// there is no typed error to unwrap.
	return err != nil && strings.Contains(err.Error(), "constraint failed")
}
