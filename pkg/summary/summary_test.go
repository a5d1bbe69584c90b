package summary

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightfeed/nightfeed/pkg/config"
	"github.com/nightfeed/nightfeed/pkg/store"
)

// fakeStore is an in-memory Store for summary tests
type fakeStore struct {
	cursor      map[string]string
	cursorErr   error
	setErr      error
	reviews     []store.Review
	discussions []store.Discussion

	reviewCutoff     int64
	discussionCutoff int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{cursor: map[string]string{}}
}

func (f *fakeStore) GetCursor(_ context.Context, key string) (string, bool, error) {
	if f.cursorErr != nil {
		return "", false, f.cursorErr
	}
	v, ok := f.cursor[key]
	return v, ok, nil
}

func (f *fakeStore) SetCursor(_ context.Context, key, value string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.cursor[key] = value
	return nil
}

func (f *fakeStore) ReviewsSince(_ context.Context, cutoff int64, _ int) ([]store.Review, error) {
	f.reviewCutoff = cutoff
	return f.reviews, nil
}

func (f *fakeStore) DiscussionsSince(_ context.Context, cutoff int64, _ int) ([]store.Discussion, error) {
	f.discussionCutoff = cutoff
	return f.discussions, nil
}

func llmServer(t *testing.T, content string, capture *string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if capture != nil {
			*capture = req.Messages[len(req.Messages)-1].Content
		}

		resp := openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Content: content}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp) //nolint:errcheck
	}))
}

func testConfig(endpoint string) config.SummaryConfig {
	return config.SummaryConfig{
		Enabled:       true,
		Endpoint:      endpoint + "/v1",
		APIKey:        "test-key",
		Model:         "gpt-4o-mini",
		LookbackDays:  7,
		MaxInputItems: 100,
		MaxChars:      1800,
		Temperature:   0.7,
	}
}

func TestGenerator_FirstRunUsesLookback(t *testing.T) {
	var prompt string
	server := llmServer(t, "players are happy overall", &prompt)
	defer server.Close()

	st := newFakeStore()
	st.reviews = []store.Review{
		{RecommendationID: "r1", VotedUp: true, Body: "love it"},
		{RecommendationID: "r2", VotedUp: false, Body: "crashes a lot"},
	}
	st.discussions = []store.Discussion{
		{GID: "d1", Title: "Crash thread", Replies: 12, Snippet: "crashes on startup"},
	}

	g := New(testConfig(server.URL), st)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	g.nowFn = func() time.Time { return now }

	result, err := g.Generate(context.Background(), "Test Game")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.FirstRun)
	assert.Equal(t, "players are happy overall", result.Summary)
	assert.Equal(t, 2, result.ReviewCount)
	assert.Equal(t, 1, result.DiscussionCount)

	// lookback window of 7 days
	assert.Equal(t, now.Add(-7*24*time.Hour).Unix(), st.reviewCutoff)

	// prompt carries the game, phrasing, and feedback
	assert.Contains(t, prompt, "Test Game")
	assert.Contains(t, prompt, "from the last 7 days")
	assert.Contains(t, prompt, "love it")
	assert.Contains(t, prompt, "crashes a lot")
	assert.Contains(t, prompt, "Crash thread (12 replies)")

	// cursor advanced to now
	assert.Equal(t, strconv.FormatInt(now.Unix(), 10), st.cursor[CursorKey])
}

func TestGenerator_IncrementalUsesCursor(t *testing.T) {
	var prompt string
	server := llmServer(t, "summary", &prompt)
	defer server.Close()

	st := newFakeStore()
	st.cursor[CursorKey] = "1700000000"
	st.reviews = []store.Review{{RecommendationID: "r1", Body: "ok"}}

	g := New(testConfig(server.URL), st)
	result, err := g.Generate(context.Background(), "Test Game")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.False(t, result.FirstRun)
	assert.Equal(t, int64(1700000000), st.reviewCutoff, "window starts at the cursor")
	assert.Contains(t, prompt, "since the last check")
}

func TestGenerator_NothingToSummarize(t *testing.T) {
	server := llmServer(t, "should not be called", nil)
	defer server.Close()

	st := newFakeStore()
	g := New(testConfig(server.URL), st)

	result, err := g.Generate(context.Background(), "Test Game")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Empty(t, st.cursor, "cursor untouched when nothing was generated")
}

func TestGenerator_TrimsToMaxChars(t *testing.T) {
	long := strings.Repeat("a", 5000)
	server := llmServer(t, long, nil)
	defer server.Close()

	st := newFakeStore()
	st.reviews = []store.Review{{RecommendationID: "r1", Body: "x"}}

	cfg := testConfig(server.URL)
	cfg.MaxChars = 100
	g := New(cfg, st)

	result, err := g.Generate(context.Background(), "Test Game")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Summary, 100)
	assert.True(t, strings.HasSuffix(result.Summary, "..."))
}

func TestGenerator_TrimsOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("é", 5000)
	server := llmServer(t, long, nil)
	defer server.Close()

	st := newFakeStore()
	st.reviews = []store.Review{{RecommendationID: "r1", Body: "x"}}

	cfg := testConfig(server.URL)
	cfg.MaxChars = 100
	g := New(cfg, st)

	result, err := g.Generate(context.Background(), "Test Game")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, utf8.ValidString(result.Summary), "no rune split mid-sequence")
	assert.Equal(t, 100, utf8.RuneCountInString(result.Summary))
	assert.True(t, strings.HasSuffix(result.Summary, "..."))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "héllo", truncate("héllo", 10))
	assert.Equal(t, "ééé", truncate("ééééé", 3))
	assert.True(t, utf8.ValidString(truncate(strings.Repeat("漢", 10), 7)))
}

func TestGenerator_CursorErrorDegradesToLookback(t *testing.T) {
	server := llmServer(t, "summary", nil)
	defer server.Close()

	st := newFakeStore()
	st.cursorErr = errors.New("store locked")
	st.reviews = []store.Review{{RecommendationID: "r1", Body: "x"}}

	g := New(testConfig(server.URL), st)
	result, err := g.Generate(context.Background(), "Test Game")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.True(t, result.FirstRun)
}

func TestGenerator_APIFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	st := newFakeStore()
	st.reviews = []store.Review{{RecommendationID: "r1", Body: "x"}}

	g := New(testConfig(server.URL), st)
	_, err := g.Generate(context.Background(), "Test Game")
	require.Error(t, err)
	assert.Empty(t, st.cursor, "cursor not advanced on failure")
}
