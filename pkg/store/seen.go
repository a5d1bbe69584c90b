package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// Exists reports whether an item identity was already observed
func (s *Store) Exists(ctx context.Context, identity string) (bool, error) {
	var count int
	err := s.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM seen WHERE identity = ?", identity)
	if err != nil {
		return false, fmt.Errorf("check seen %s: %w", identity, err)
	}
	return count > 0, nil
}

// FilterKnown partitions identities into already-seen ones. Returns the set
// of identities present in the seen table.
func (s *Store) FilterKnown(ctx context.Context, identities []string) (map[string]bool, error) {
	known := make(map[string]bool)
	if len(identities) == 0 {
		return known, nil
	}

	query, args, err := prepareInQuery("SELECT identity FROM seen WHERE identity IN (?)", identities)
	if err != nil {
		return nil, fmt.Errorf("build seen query: %w", err)
	}

	var found []string
	if err := s.conn.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("filter known identities: %w", err)
	}

	for _, id := range found {
		known[id] = true
	}
	return known, nil
}

// MarkSeen records an item identity as observed. Idempotent: marking an
// identity twice keeps exactly one row and returns no error.
func (s *Store) MarkSeen(ctx context.Context, rec SeenRecord) error {
	if rec.FirstSeen == 0 {
		rec.FirstSeen = time.Now().Unix()
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO seen (identity, source, title, first_seen)
			VALUES (:identity, :source, :title, :first_seen)
			ON CONFLICT(identity) DO NOTHING
		`
		if _, err := s.conn.NamedExecContext(ctx, query, rec); err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("mark seen %s: %w", rec.Identity, err)}
		}
		return nil
	})
}

// SeenCount returns the number of recorded identities, optionally per source
func (s *Store) SeenCount(ctx context.Context, source string) (int64, error) {
	var count int64
	var err error
	if source == "" {
		err = s.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM seen")
	} else {
		err = s.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM seen WHERE source = ?", source)
	}
	if err != nil {
		return 0, fmt.Errorf("count seen: %w", err)
	}
	return count, nil
}
