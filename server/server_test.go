package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightfeed/nightfeed/pkg/store"
	"github.com/nightfeed/nightfeed/server/mocks"
)

type testConfig struct{}

func (testConfig) GetServerConfig() (string, time.Duration) {
	return "127.0.0.1:0", 30 * time.Second
}

func newTestServer(executions ExecutionReader) *httptest.Server {
	s := New(testConfig{}, executions, "test", false)
	return httptest.NewServer(s.router)
}

func TestServer_Status(t *testing.T) {
	ts := newTestServer(&mocks.ExecutionReaderMock{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "test", body["version"])
}

func TestServer_Executions(t *testing.T) {
	reader := &mocks.ExecutionReaderMock{
		GetExecutionsFunc: func(_ context.Context, _, _ string, _ int) ([]store.Execution, error) {
			return []store.Execution{
				{
					ID:              2,
					Date:            "2026-09-01",
					Stage:           "pipeline",
					Status:          store.StatusSuccess,
					DurationSeconds: store.NullInt64(42),
					CreatedAt:       1756700000,
				},
				{
					ID:           1,
					Date:         "2026-09-01",
					Stage:        "write",
					Status:       store.StatusFailure,
					ErrorMessage: store.NullString("exit status 1"),
					CreatedAt:    1756690000,
				},
			}, nil
		},
	}
	ts := newTestServer(reader)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/executions?date=2026-09-01&status=success")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Executions []executionRecord `json:"executions"`
		Count      int               `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	assert.Equal(t, 2, body.Count)
	require.Len(t, body.Executions, 2)
	assert.Equal(t, "pipeline", body.Executions[0].Stage)
	require.NotNil(t, body.Executions[0].DurationSeconds)
	assert.Equal(t, int64(42), *body.Executions[0].DurationSeconds)
	assert.Nil(t, body.Executions[1].DurationSeconds)
	assert.Equal(t, "exit status 1", body.Executions[1].ErrorMessage)

	// filters passed through to the reader
	calls := reader.GetExecutionsCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "2026-09-01", calls[0].Date)
	assert.Equal(t, "success", calls[0].Status)
	assert.Equal(t, 100, calls[0].Limit)
}

func TestServer_ExecutionsCustomLimit(t *testing.T) {
	reader := &mocks.ExecutionReaderMock{
		GetExecutionsFunc: func(_ context.Context, _, _ string, _ int) ([]store.Execution, error) {
			return nil, nil
		},
	}
	ts := newTestServer(reader)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/executions?limit=5")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	calls := reader.GetExecutionsCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 5, calls[0].Limit)
}

func TestServer_ExecutionsBadLimit(t *testing.T) {
	ts := newTestServer(&mocks.ExecutionReaderMock{})
	defer ts.Close()

	for _, limit := range []string{"abc", "0", "-1", "5000"} {
		resp, err := http.Get(ts.URL + "/api/v1/executions?limit=" + limit)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "limit %q", limit)
	}
}

func TestServer_ExecutionsReaderError(t *testing.T) {
	reader := &mocks.ExecutionReaderMock{
		GetExecutionsFunc: func(_ context.Context, _, _ string, _ int) ([]store.Execution, error) {
			return nil, errors.New("database locked")
		},
	}
	ts := newTestServer(reader)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/executions")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Contains(t, body["error"], "database locked")
}

func TestServer_Ping(t *testing.T) {
	ts := newTestServer(&mocks.ExecutionReaderMock{})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_RunAndShutdown(t *testing.T) {
	s := New(testConfig{}, &mocks.ExecutionReaderMock{}, "test", true)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
