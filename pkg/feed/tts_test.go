package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTSClient_Synthesize(t *testing.T) {
	var gotText string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req ttsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotText = req.Text

		w.Write([]byte("fake-mp3-bytes")) //nolint:errcheck
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "episodes", "2026-09-01.mp3")
	c := NewTTSClient(server.URL, 5*time.Second)
	require.NoError(t, c.Synthesize(context.Background(), "Good evening, here is the news.", outputPath))

	assert.Equal(t, "Good evening, here is the news.", gotText)
	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, "fake-mp3-bytes", string(data))
}

func TestTTSClient_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	c := NewTTSClient(server.URL, 5*time.Second)
	err := c.Synthesize(context.Background(), "text", outputPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestTTSClient_EmptyAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "out.mp3")
	c := NewTTSClient(server.URL, 5*time.Second)
	err := c.Synthesize(context.Background(), "text", outputPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty audio")

	_, serr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(serr), "truncated episode removed")
}

func TestTTSClient_NotConfigured(t *testing.T) {
	c := NewTTSClient("", time.Second)
	err := c.Synthesize(context.Background(), "text", filepath.Join(t.TempDir(), "out.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestTTSClient_EmptyText(t *testing.T) {
	c := NewTTSClient("http://localhost:1", time.Second)
	err := c.Synthesize(context.Background(), "", filepath.Join(t.TempDir(), "out.mp3"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty script")
}
