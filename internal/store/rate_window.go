package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RateWindowStore adapts the Store to the ratelimit.Store interface so
// rate-limit windows survive restarts.
type RateWindowStore struct {
	db *sql.DB
}

// RateWindows returns the durable rate-limit counting backend.
func (s *Store) RateWindows() *RateWindowStore {
	return &RateWindowStore{db: s.db}
}

// Take implements the check-and-increment in one transaction. Expired
// windows reset; saturated windows deny without incrementing.
func (r *RateWindowStore) Take(key string, now time.Time, window time.Duration, limit int) (bool, int, time.Time, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("begin rate window tx: %w", err)
	}
	defer tx.Rollback()

	var (
		count   int
		resetAt time.Time
	)
	err = tx.QueryRow(`SELECT count, reset_at FROM rate_windows WHERE key = ?`, key).
		Scan(&count, &resetAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		count = 0
		resetAt = now.Add(window)
	case err != nil:
		return false, 0, time.Time{}, fmt.Errorf("read rate window: %w", err)
	case !now.Before(resetAt):
		count = 0
		resetAt = now.Add(window)
	}

	if count >= limit {
		return false, count, resetAt, nil
	}

	count++
	_, err = tx.Exec(`
		INSERT INTO rate_windows (key, count, reset_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET count = excluded.count, reset_at = excluded.reset_at`,
		key, count, resetAt.UTC())
	if err != nil {
		return false, 0, time.Time{}, fmt.Errorf("write rate window: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, time.Time{}, fmt.Errorf("commit rate window: %w", err)
	}
	return true, count, resetAt, nil
}

// PruneRateWindows drops expired windows.
func (s *Store) PruneRateWindows(now time.Time) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM rate_windows WHERE reset_at <= ?`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune rate windows: %w", err)
	}
	return res.RowsAffected()
}
