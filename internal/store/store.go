// Package store persists the delivery journal in sqlite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/clawinfra/herald/internal/types"
)

// Store is the sqlite-backed delivery journal.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (or creates) the journal database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open db: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec(`PRAGMA journal_mode=WAL`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: wal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}

	return s, nil
}

// migrate creates tables on first run.
func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS deliveries (
			id        TEXT PRIMARY KEY,
			kind      TEXT NOT NULL,
			recipient TEXT NOT NULL DEFAULT '',
			body      TEXT NOT NULL,
			digest    TEXT NOT NULL DEFAULT '',
			status    TEXT NOT NULL,
			error     TEXT NOT NULL DEFAULT '',
			sent_at   INTEGER NOT NULL,
			duration_ns INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_kind ON deliveries(kind)`,
		`CREATE INDEX IF NOT EXISTS idx_deliveries_sent_at ON deliveries(sent_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Record appends one delivery to the journal.
func (s *Store) Record(ctx context.Context, d types.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO deliveries
		 (id, kind, recipient, body, digest, status, error, sent_at, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, string(d.Kind), d.To, d.Body, d.Digest, string(d.Status),
		d.Error, d.SentAt.UnixNano(), int64(d.Duration),
	)
	if err != nil {
		return fmt.Errorf("store: record delivery: %w", err)
	}
	return nil
}

// Recent returns the newest deliveries, most recent first.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, recipient, body, digest, status, error, sent_at, duration_ns
		 FROM deliveries ORDER BY sent_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: query recent: %w", err)
	}
	defer rows.Close()
	return scanDeliveries(rows)
}

// ByKind returns the newest deliveries for one channel kind.
func (s *Store) ByKind(ctx context.Context, kind types.Kind, limit int) ([]types.Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, recipient, body, digest, status, error, sent_at, duration_ns
		 FROM deliveries WHERE kind = ? ORDER BY sent_at DESC LIMIT ?`, string(kind), limit)
	if err != nil {
		return nil, fmt.Errorf("store: query by kind: %w", err)
	}
	defer rows.Close()
	return scanDeliveries(rows)
}

// Count returns the total number of journal entries.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deliveries`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanDeliveries(rows *sql.Rows) ([]types.Delivery, error) {
	var out []types.Delivery
	for rows.Next() {
		var (
			d          types.Delivery
			kind       string
			status     string
			sentAt     int64
			durationNs int64
		)
		if err := rows.Scan(&d.ID, &kind, &d.To, &d.Body, &d.Digest, &status,
			&d.Error, &sentAt, &durationNs); err != nil {
			return nil, fmt.Errorf("store: scan delivery: %w", err)
		}
		d.Kind = types.Kind(kind)
		d.Status = types.DeliveryStatus(status)
		d.SentAt = time.Unix(0, sentAt).UTC()
		d.Duration = time.Duration(durationNs)
		out = append(out, d)
	}
	return out, rows.Err()
}
