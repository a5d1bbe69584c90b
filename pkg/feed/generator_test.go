package feed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEpisode(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestGenerator_Generate(t *testing.T) {
	dir := t.TempDir()
	writeEpisode(t, dir, "2026-08-30.mp3", "audio-a")
	writeEpisode(t, dir, "2026-08-31.mp3", "audio-bb")
	writeEpisode(t, dir, "notes.txt", "ignored")
	writeEpisode(t, dir, "bonus.mp3", "ignored, not dated")

	outputPath := filepath.Join(t.TempDir(), "feed.xml")
	g := NewGenerator("Night Feed", "Daily game news podcast", "https://example.com/podcast/", 30)
	require.NoError(t, g.Generate(dir, outputPath))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	content := string(data)

	assert.True(t, strings.HasPrefix(content, "<?xml"))
	assert.Contains(t, content, "<title>Night Feed</title>")
	assert.Contains(t, content, `url="https://example.com/podcast/episodes/2026-08-31.mp3"`)
	assert.Contains(t, content, `url="https://example.com/podcast/episodes/2026-08-30.mp3"`)
	assert.Contains(t, content, "<guid>nightfeed-2026-08-31</guid>")
	assert.NotContains(t, content, "bonus")

	// newest episode listed first, enclosure carries the file size
	assert.Less(t, strings.Index(content, "2026-08-31"), strings.Index(content, "2026-08-30"))
	assert.Contains(t, content, `length="8"`)
}

func TestGenerator_MaxEpisodes(t *testing.T) {
	dir := t.TempDir()
	writeEpisode(t, dir, "2026-08-29.mp3", "a")
	writeEpisode(t, dir, "2026-08-30.mp3", "b")
	writeEpisode(t, dir, "2026-08-31.mp3", "c")

	outputPath := filepath.Join(t.TempDir(), "feed.xml")
	g := NewGenerator("Night Feed", "desc", "https://example.com", 2)
	require.NoError(t, g.Generate(dir, outputPath))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "2026-08-31")
	assert.Contains(t, content, "2026-08-30")
	assert.NotContains(t, content, "2026-08-29")
}

func TestGenerator_EmptyDir(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "feed.xml")
	g := NewGenerator("Night Feed", "desc", "https://example.com", 30)
	require.NoError(t, g.Generate(t.TempDir(), outputPath))

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<channel>")
	assert.NotContains(t, string(data), "<item>")
}

func TestGenerator_MissingDir(t *testing.T) {
	g := NewGenerator("Night Feed", "desc", "https://example.com", 30)
	err := g.Generate("/nonexistent/episodes", filepath.Join(t.TempDir(), "feed.xml"))
	require.Error(t, err)
}

func TestPruneEpisodes(t *testing.T) {
	dir := t.TempDir()
	old := time.Now().AddDate(0, 0, -45).Format("2006-01-02")
	recent := time.Now().AddDate(0, 0, -5).Format("2006-01-02")
	writeEpisode(t, dir, old+".mp3", "old")
	writeEpisode(t, dir, recent+".mp3", "recent")
	writeEpisode(t, dir, "keeper.mp3", "not dated, untouched")

	removed := PruneEpisodes(dir, 30)
	assert.Equal(t, 1, removed)

	_, err := os.Stat(filepath.Join(dir, old+".mp3"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, recent+".mp3"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "keeper.mp3"))
	assert.NoError(t, err)
}
