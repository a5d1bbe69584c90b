package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// AddDiscussion inserts one discussion together with its seen record in a
// single transaction. Inserting an already stored discussion is a no-op.
func (s *Store) AddDiscussion(ctx context.Context, disc Discussion) error {
	if disc.Fetched == 0 {
		disc.Fetched = time.Now().Unix()
	}

	return s.InTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO discussions (
				gid, title, author_id, author_name, created,
				snippet, replies, views, pinned, fetched
			) VALUES (
				:gid, :title, :author_id, :author_name, :created,
				:snippet, :replies, :views, :pinned, :fetched
			)
			ON CONFLICT(gid) DO NOTHING
		`
		if _, err := tx.NamedExecContext(ctx, query, disc); err != nil {
			return fmt.Errorf("insert discussion %s: %w", disc.GID, err)
		}

		seenQuery := `
			INSERT INTO seen (identity, source, title, first_seen)
			VALUES (?, 'discussion', ?, ?)
			ON CONFLICT(identity) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, seenQuery, disc.GID, disc.Title, disc.Fetched); err != nil {
			return fmt.Errorf("mark discussion seen %s: %w", disc.GID, err)
		}
		return nil
	})
}

// AddDiscussions inserts discussions best-effort, logging and skipping
// failures. Returns the number of discussions that persisted.
func (s *Store) AddDiscussions(ctx context.Context, discs []Discussion) int {
	inserted := 0
	for _, disc := range discs {
		if err := s.AddDiscussion(ctx, disc); err != nil {
			log.Printf("[WARN] failed to insert discussion %s: %v", disc.GID, err)
			continue
		}
		inserted++
	}
	return inserted
}

// DiscussionCount returns the total number of stored discussions
func (s *Store) DiscussionCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM discussions"); err != nil {
		return 0, fmt.Errorf("count discussions: %w", err)
	}
	return count, nil
}

// DiscussionsSince returns unpinned discussions created after the cutoff,
// newest first
func (s *Store) DiscussionsSince(ctx context.Context, cutoff int64, limit int) ([]Discussion, error) {
	var discs []Discussion
	query := `
		SELECT * FROM discussions
		WHERE created > ? AND pinned = 0
		ORDER BY created DESC
		LIMIT ?
	`
	if err := s.conn.SelectContext(ctx, &discs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("discussions since %d: %w", cutoff, err)
	}
	return discs, nil
}
