package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// GetCursor returns the value of a named cursor. The second return value
// is false when the cursor was never set.
func (s *Store) GetCursor(ctx context.Context, key string) (value string, ok bool, err error) {
	err = s.conn.GetContext(ctx, &value, "SELECT value FROM cursors WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get cursor %s: %w", key, err)
	}
	return value, true, nil
}

// SetCursor overwrites a named cursor value
func (s *Store) SetCursor(ctx context.Context, key, value string) error {
	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO cursors (key, value, updated_at)
			VALUES (?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
		`
		if _, err := s.conn.ExecContext(ctx, query, key, value, time.Now().Unix()); err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("set cursor %s: %w", key, err)}
		}
		return nil
	})
}
