package store

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Cleanup removes rows older than the retention window. It runs outside the
// collection critical path and never touches today's data.
func (s *Store) Cleanup(ctx context.Context, retentionDays int) error {
	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour).Unix()

	targets := []struct {
		table  string
		column string
	}{
		{"rankings", "captured_at"},
		{"seen", "first_seen"},
		{"reviews", "fetched"},
		{"discussions", "fetched"},
		{"executions", "created_at"},
	}

	for _, t := range targets {
		res, err := s.conn.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE %s < ?", t.table, t.column), cutoff) //nolint:gosec // table names are fixed above
		if err != nil {
			return fmt.Errorf("cleanup %s: %w", t.table, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			log.Printf("[INFO] cleaned up %d rows from %s older than %d days", n, t.table, retentionDays)
		}
	}

	return nil
}
