package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// TTSClient synthesizes episode audio from a script via an HTTP
// text-to-speech service
type TTSClient struct {
	client   *http.Client
	endpoint string
}

// NewTTSClient creates a TTS client for the given endpoint
func NewTTSClient(endpoint string, timeout time.Duration) *TTSClient {
	return &TTSClient{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
	}
}

type ttsRequest struct {
	Text string `json:"text"`
}

// Synthesize posts the script text to the TTS service and writes the
// returned audio to outputPath. The output directory is created if missing.
func (c *TTSClient) Synthesize(ctx context.Context, text, outputPath string) error {
	if c.endpoint == "" {
		return fmt.Errorf("tts endpoint not configured")
	}
	if text == "" {
		return fmt.Errorf("empty script text")
	}

	body, err := json.Marshal(ttsRequest{Text: text})
	if err != nil {
		return fmt.Errorf("marshal tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tts service returned status %d", resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	f, err := os.Create(outputPath) //nolint:gosec // path is built from config dirs
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer f.Close()

	written, err := io.Copy(f, resp.Body)
	if err != nil {
		os.Remove(outputPath) // do not leave a truncated episode behind
		return fmt.Errorf("write audio file: %w", err)
	}
	if written == 0 {
		os.Remove(outputPath)
		return fmt.Errorf("tts service returned empty audio")
	}

	log.Printf("[INFO] synthesized %d bytes of audio to %s", written, outputPath)
	return nil
}
