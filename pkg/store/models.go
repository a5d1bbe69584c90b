package store

import "database/sql"

// SeenRecord marks one item identity as observed
type SeenRecord struct {
	Identity  string `db:"identity"`
	Source    string `db:"source"`
	Title     string `db:"title"`
	FirstSeen int64  `db:"first_seen"`
}

// Review represents a stored user review
type Review struct {
	RecommendationID string `db:"recommendation_id"`
	AuthorID         string `db:"author_id"`
	VotedUp          bool   `db:"voted_up"`
	Created          int64  `db:"created"`
	Updated          int64  `db:"updated"`
	Body             string `db:"body"`
	Language         string `db:"language"`
	PlaytimeForever  int64  `db:"playtime_forever"`
	PlaytimeRecent   int64  `db:"playtime_recent"`
	Fetched          int64  `db:"fetched"`
}

// Discussion represents a stored forum discussion topic
type Discussion struct {
	GID        string `db:"gid"`
	Title      string `db:"title"`
	AuthorID   string `db:"author_id"`
	AuthorName string `db:"author_name"`
	Created    int64  `db:"created"`
	Snippet    string `db:"snippet"`
	Replies    int    `db:"replies"`
	Views      int    `db:"views"`
	Pinned     bool   `db:"pinned"`
	Fetched    int64  `db:"fetched"`
}

// Ranking is one (date, app) position in the daily marketplace ranking
type Ranking struct {
	Date       string `db:"date"`
	AppID      int64  `db:"app_id"`
	Name       string `db:"name"`
	Rank       int    `db:"rank"`
	CapturedAt int64  `db:"captured_at"`
}

// RankEntry is the per-app view of a single day's ranking
type RankEntry struct {
	Name string
	Rank int
}

// Execution is one append-only pipeline execution record
type Execution struct {
	ID              int64          `db:"id"`
	Date            string         `db:"date"`
	Stage           string         `db:"stage"`
	Status          string         `db:"status"`
	DurationSeconds sql.NullInt64  `db:"duration_seconds"`
	ErrorMessage    sql.NullString `db:"error_message"`
	CreatedAt       int64          `db:"created_at"`
}

// execution status values
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// NullInt64 wraps a value as a valid sql.NullInt64
func NullInt64(v int64) sql.NullInt64 { return sql.NullInt64{Int64: v, Valid: true} }

// NullString wraps a value as a valid sql.NullString
func NullString(v string) sql.NullString { return sql.NullString{String: v, Valid: true} }
