package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/repeater/v2"
)

// LogExecution appends one execution record. Records are never mutated or
// deleted during a pipeline run; cleanup happens separately by age.
func (s *Store) LogExecution(ctx context.Context, exec Execution) error {
	if exec.CreatedAt == 0 {
		exec.CreatedAt = time.Now().Unix()
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))

	return retrier.Do(ctx, func() error {
		query := `
			INSERT INTO executions (date, stage, status, duration_seconds, error_message, created_at)
			VALUES (:date, :stage, :status, :duration_seconds, :error_message, :created_at)
		`
		if _, err := s.conn.NamedExecContext(ctx, query, exec); err != nil {
			if isLockError(err) {
				return err // retry
			}
			return &criticalError{err: fmt.Errorf("log execution %s/%s: %w", exec.Date, exec.Stage, err)}
		}
		return nil
	})
}

// GetExecutions returns execution records filtered by date and/or status,
// newest first
func (s *Store) GetExecutions(ctx context.Context, date, status string, limit int) ([]Execution, error) {
	query := "SELECT * FROM executions WHERE 1=1"
	var args []interface{}

	if date != "" {
		query += " AND date = ?"
		args = append(args, date)
	}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	query += " ORDER BY created_at DESC, id DESC"

	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	var execs []Execution
	if err := s.conn.SelectContext(ctx, &execs, query, args...); err != nil {
		return nil, fmt.Errorf("get executions: %w", err)
	}
	return execs, nil
}
