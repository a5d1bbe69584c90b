package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// AddReview inserts one review together with its seen record in a single
// transaction. Inserting an already stored review is a no-op.
func (s *Store) AddReview(ctx context.Context, rev Review) error {
	if rev.Fetched == 0 {
		rev.Fetched = time.Now().Unix()
	}

	return s.InTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO reviews (
				recommendation_id, author_id, voted_up, created, updated,
				body, language, playtime_forever, playtime_recent, fetched
			) VALUES (
				:recommendation_id, :author_id, :voted_up, :created, :updated,
				:body, :language, :playtime_forever, :playtime_recent, :fetched
			)
			ON CONFLICT(recommendation_id) DO NOTHING
		`
		if _, err := tx.NamedExecContext(ctx, query, rev); err != nil {
			return fmt.Errorf("insert review %s: %w", rev.RecommendationID, err)
		}

		seenQuery := `
			INSERT INTO seen (identity, source, title, first_seen)
			VALUES (?, 'review', '', ?)
			ON CONFLICT(identity) DO NOTHING
		`
		if _, err := tx.ExecContext(ctx, seenQuery, rev.RecommendationID, rev.Fetched); err != nil {
			return fmt.Errorf("mark review seen %s: %w", rev.RecommendationID, err)
		}
		return nil
	})
}

// AddReviews inserts reviews best-effort: a failure on one review is logged
// and does not abort the rest of the batch. Returns the number of reviews
// that persisted without error.
func (s *Store) AddReviews(ctx context.Context, revs []Review) int {
	inserted := 0
	for _, rev := range revs {
		if err := s.AddReview(ctx, rev); err != nil {
			log.Printf("[WARN] failed to insert review %s: %v", rev.RecommendationID, err)
			continue
		}
		inserted++
	}
	return inserted
}

// ReviewCount returns the total number of stored reviews
func (s *Store) ReviewCount(ctx context.Context) (int64, error) {
	var count int64
	if err := s.conn.GetContext(ctx, &count, "SELECT COUNT(*) FROM reviews"); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return count, nil
}

// ReviewTotals returns the stored negative and positive review counts
func (s *Store) ReviewTotals(ctx context.Context) (negative, positive int64, err error) {
	rows, err := s.conn.QueryxContext(ctx, "SELECT voted_up, COUNT(*) FROM reviews GROUP BY voted_up")
	if err != nil {
		return 0, 0, fmt.Errorf("review totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var votedUp bool
		var count int64
		if err := rows.Scan(&votedUp, &count); err != nil {
			return 0, 0, fmt.Errorf("scan review totals: %w", err)
		}
		if votedUp {
			positive = count
		} else {
			negative = count
		}
	}
	return negative, positive, rows.Err()
}

// ReviewsSince returns reviews created after the cutoff, newest first
func (s *Store) ReviewsSince(ctx context.Context, cutoff int64, limit int) ([]Review, error) {
	var revs []Review
	query := `
		SELECT * FROM reviews
		WHERE created > ?
		ORDER BY created DESC
		LIMIT ?
	`
	if err := s.conn.SelectContext(ctx, &revs, query, cutoff, limit); err != nil {
		return nil, fmt.Errorf("reviews since %d: %w", cutoff, err)
	}
	return revs, nil
}
