package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()

	// create temp file for test database
	tmpFile, err := os.CreateTemp("", "test-*.db")
	require.NoError(t, err)
	tmpFile.Close()

	s, err := New(Config{DSN: "file:" + tmpFile.Name() + "?mode=rwc"})
	require.NoError(t, err)

	t.Cleanup(func() {
		s.Close()
		os.Remove(tmpFile.Name())
	})

	return s
}

func TestStore_InitSchema(t *testing.T) {
	s := setupTestStore(t)

	var count int
	err := s.conn.Get(&count, `
		SELECT COUNT(*) FROM sqlite_master
		WHERE type='table' AND name IN ('seen', 'reviews', 'discussions', 'rankings', 'cursors', 'executions')
	`)
	require.NoError(t, err)
	assert.Equal(t, 6, count)
}

func TestStore_MarkSeenIdempotent(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	exists, err := s.Exists(ctx, "r1")
	require.NoError(t, err)
	assert.False(t, exists)

	rec := SeenRecord{Identity: "r1", Source: "review"}
	require.NoError(t, s.MarkSeen(ctx, rec))
	require.NoError(t, s.MarkSeen(ctx, rec)) // second call must be a no-op

	exists, err = s.Exists(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, exists)

	// exactly one row for the identity
	var count int
	err = s.conn.Get(&count, "SELECT COUNT(*) FROM seen WHERE identity = ?", "r1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestStore_FilterKnown(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.MarkSeen(ctx, SeenRecord{Identity: "a", Source: "rss"}))
	require.NoError(t, s.MarkSeen(ctx, SeenRecord{Identity: "b", Source: "rss"}))

	known, err := s.FilterKnown(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)
	assert.True(t, known["a"])
	assert.True(t, known["b"])
	assert.False(t, known["c"])

	known, err = s.FilterKnown(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, known)
}

func TestStore_Cursors(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	_, ok, err := s.GetCursor(ctx, "last_summary_timestamp")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetCursor(ctx, "last_summary_timestamp", "1700000000"))

	val, ok, err := s.GetCursor(ctx, "last_summary_timestamp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1700000000", val)

	// overwrite semantics, single slot per key
	require.NoError(t, s.SetCursor(ctx, "last_summary_timestamp", "1800000000"))
	val, ok, err = s.GetCursor(ctx, "last_summary_timestamp")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1800000000", val)

	var count int
	require.NoError(t, s.conn.Get(&count, "SELECT COUNT(*) FROM cursors"))
	assert.Equal(t, 1, count)
}

func TestStore_Reviews(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	count, err := s.ReviewCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	revs := []Review{
		{RecommendationID: "r1", VotedUp: true, Created: 100, Body: "great"},
		{RecommendationID: "r2", VotedUp: false, Created: 200, Body: "broken"},
	}
	inserted := s.AddReviews(ctx, revs)
	assert.Equal(t, 2, inserted)

	// duplicate insert is a no-op, still counted as persisted
	inserted = s.AddReviews(ctx, revs[:1])
	assert.Equal(t, 1, inserted)

	count, err = s.ReviewCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	neg, pos, err := s.ReviewTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), neg)
	assert.Equal(t, int64(1), pos)

	// seen records created alongside
	exists, err := s.Exists(ctx, "r1")
	require.NoError(t, err)
	assert.True(t, exists)

	since, err := s.ReviewsSince(ctx, 150, 10)
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "r2", since[0].RecommendationID)
}

func TestStore_Discussions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	discs := []Discussion{
		{GID: "d1", Title: "Bug report", Created: 100, Replies: 3},
		{GID: "d2", Title: "Pinned rules", Created: 200, Pinned: true},
	}
	inserted := s.AddDiscussions(ctx, discs)
	assert.Equal(t, 2, inserted)

	count, err := s.DiscussionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// pinned topics excluded from the summary window
	since, err := s.DiscussionsSince(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, since, 1)
	assert.Equal(t, "d1", since[0].GID)

	exists, err := s.Exists(ctx, "d1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestStore_Rankings(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	day1 := []Ranking{
		{AppID: 10, Name: "Alpha", Rank: 1},
		{AppID: 20, Name: "Beta", Rank: 2},
	}
	require.NoError(t, s.PutRankings(ctx, "2026-08-30", day1))

	day2 := []Ranking{
		{AppID: 20, Name: "Beta", Rank: 1},
		{AppID: 30, Name: "Gamma", Rank: 2},
	}
	require.NoError(t, s.PutRankings(ctx, "2026-08-31", day2))

	// re-capture of the same day replaces positions (last writer wins)
	require.NoError(t, s.PutRankings(ctx, "2026-08-31", []Ranking{{AppID: 20, Name: "Beta", Rank: 3}}))

	rankings, err := s.GetRankings(ctx, 7)
	require.NoError(t, err)
	require.Len(t, rankings, 2)
	assert.Equal(t, 1, rankings["2026-08-30"][10].Rank)
	assert.Equal(t, 3, rankings["2026-08-31"][20].Rank)
	assert.Equal(t, "Gamma", rankings["2026-08-31"][30].Name)

	// daysBack limits distinct dates
	rankings, err = s.GetRankings(ctx, 1)
	require.NoError(t, err)
	require.Len(t, rankings, 1)
	_, ok := rankings["2026-08-31"]
	assert.True(t, ok)
}

func TestStore_Executions(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.LogExecution(ctx, Execution{
		Date: "2026-09-01", Stage: "collector", Status: StatusSuccess,
		DurationSeconds: NullInt64(42),
	}))
	require.NoError(t, s.LogExecution(ctx, Execution{
		Date: "2026-09-01", Stage: "writer", Status: StatusFailure,
		ErrorMessage: NullString("writer failed with exit code 1"),
	}))

	execs, err := s.GetExecutions(ctx, "2026-09-01", "", 10)
	require.NoError(t, err)
	assert.Len(t, execs, 2)

	failures, err := s.GetExecutions(ctx, "", StatusFailure, 10)
	require.NoError(t, err)
	require.Len(t, failures, 1)
	assert.Equal(t, "writer", failures[0].Stage)
	assert.Equal(t, "writer failed with exit code 1", failures[0].ErrorMessage.String)

	none, err := s.GetExecutions(ctx, "2026-01-01", "", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_Cleanup(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	old := time.Now().Add(-60 * 24 * time.Hour).Unix()
	recent := time.Now().Unix()

	require.NoError(t, s.MarkSeen(ctx, SeenRecord{Identity: "old", FirstSeen: old}))
	require.NoError(t, s.MarkSeen(ctx, SeenRecord{Identity: "recent", FirstSeen: recent}))
	require.NoError(t, s.PutRankings(ctx, "2026-07-01", []Ranking{{AppID: 1, Rank: 1, CapturedAt: old}}))

	require.NoError(t, s.Cleanup(ctx, 30))

	exists, err := s.Exists(ctx, "old")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.Exists(ctx, "recent")
	require.NoError(t, err)
	assert.True(t, exists)

	rankings, err := s.GetRankings(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, rankings)
}
