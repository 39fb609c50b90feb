// Package storage persists the last successfully fetched dashboard overview
// per user, so the UI can render a stale copy while the backend is down.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNoSnapshot is returned when no overview has been saved for the user.
var ErrNoSnapshot = errors.New("no snapshot for user")

// SnapshotStore is a SQLite-backed store of serialized overviews.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(dbPath string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save upserts the overview payload for a user, stamped with now.
func (s *SnapshotStore) Save(ctx context.Context, userID int64, payload any) error {
	buf, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO overview_snapshots (user_id, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at`,
		userID, string(buf), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load decodes the stored payload for a user into out and returns when it
// was fetched. Returns ErrNoSnapshot when nothing is stored.
func (s *SnapshotStore) Load(ctx context.Context, userID int64, out any) (time.Time, error) {
	var payload, fetchedAt string
	row := s.db.QueryRowContext(ctx, `
		SELECT payload, fetched_at FROM overview_snapshots WHERE user_id = ?`, userID)
	if err := row.Scan(&payload, &fetchedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNoSnapshot
		}
		return time.Time{}, fmt.Errorf("load snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return time.Time{}, fmt.Errorf("decode snapshot: %w", err)
	}
	t, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse snapshot timestamp: %w", err)
	}
	return t, nil
}

// Delete removes a user's snapshot. Missing rows are not an error.
func (s *SnapshotStore) Delete(ctx context.Context, userID int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM overview_snapshots WHERE user_id = ?`, userID); err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
