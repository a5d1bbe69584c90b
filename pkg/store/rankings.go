package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PutRankings stores one day's captured ranking. A later write for the same
// (date, app) replaces the earlier one, so the final value for a day is the
// last capture.
func (s *Store) PutRankings(ctx context.Context, date string, items []Ranking) error {
	now := time.Now().Unix()

	return s.InTransaction(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT OR REPLACE INTO rankings (date, app_id, name, rank, captured_at)
			VALUES (?, ?, ?, ?, ?)
		`
		for _, item := range items {
			capturedAt := item.CapturedAt
			if capturedAt == 0 {
				capturedAt = now
			}
			if _, err := tx.ExecContext(ctx, query, date, item.AppID, item.Name, item.Rank, capturedAt); err != nil {
				return fmt.Errorf("put ranking %s/%d: %w", date, item.AppID, err)
			}
		}
		return nil
	})
}

// GetRankings returns ranking history for up to daysBack most recent
// distinct dates, keyed by date then app id.
func (s *Store) GetRankings(ctx context.Context, daysBack int) (map[string]map[int64]RankEntry, error) {
	var dates []string
	err := s.conn.SelectContext(ctx, &dates, `
		SELECT DISTINCT date FROM rankings
		ORDER BY date DESC
		LIMIT ?
	`, daysBack)
	if err != nil {
		return nil, fmt.Errorf("get ranking dates: %w", err)
	}

	result := make(map[string]map[int64]RankEntry, len(dates))
	for _, date := range dates {
		var rows []Ranking
		err := s.conn.SelectContext(ctx, &rows, "SELECT * FROM rankings WHERE date = ?", date)
		if err != nil {
			return nil, fmt.Errorf("get rankings for %s: %w", date, err)
		}

		byApp := make(map[int64]RankEntry, len(rows))
		for _, r := range rows {
			byApp[r.AppID] = RankEntry{Name: r.Name, Rank: r.Rank}
		}
		result[date] = byApp
	}

	return result, nil
}
