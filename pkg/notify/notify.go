// Package notify delivers operational messages via Discord webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

const maxMessageLen = 2000 // discord hard limit per message

// Discord sends messages to a Discord webhook. Messages over the per-message
// limit are split on paragraph boundaries and sent in order.
type Discord struct {
	client     *http.Client
	webhookURL string
	enabled    bool
}

// NewDiscord creates a Discord notifier. With an empty webhook URL the
// notifier is disabled and Send becomes a no-op.
func NewDiscord(webhookURL string, enabled bool) *Discord {
	return &Discord{
		client:     &http.Client{Timeout: 10 * time.Second},
		webhookURL: webhookURL,
		enabled:    enabled && webhookURL != "",
	}
}

// Enabled reports whether the notifier will actually deliver
func (d *Discord) Enabled() bool { return d.enabled }

// Send delivers a message, splitting it into chunks if needed. Returns the
// first delivery error but attempts all chunks regardless.
func (d *Discord) Send(ctx context.Context, message string) error {
	if !d.enabled {
		return nil
	}

	var firstErr error
	for _, chunk := range SplitMessage(message, maxMessageLen) {
		if err := d.post(ctx, chunk); err != nil {
			log.Printf("[WARN] discord delivery failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// TrySend delivers best-effort, logging failures instead of returning them.
// Used where a notification failure must not affect the caller's outcome.
func (d *Discord) TrySend(ctx context.Context, message string) {
	if err := d.Send(ctx, message); err != nil {
		log.Printf("[WARN] notification dropped: %v", err)
	}
}

func (d *Discord) post(ctx context.Context, content string) error {
	payload, err := json.Marshal(map[string]string{"content": content})
	if err != nil {
		return fmt.Errorf("marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send discord webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook status %d", resp.StatusCode)
	}
	return nil
}

// SplitMessage breaks a message into chunks no longer than limit, preferring
// paragraph boundaries. A single paragraph longer than the limit is cut hard.
func SplitMessage(message string, limit int) []string {
	if len(message) <= limit {
		return []string{message}
	}

	var chunks []string
	var buf strings.Builder

	flush := func() {
		if buf.Len() > 0 {
			chunks = append(chunks, buf.String())
			buf.Reset()
		}
	}

	for _, para := range strings.Split(message, "\n\n") {
		// hard-cut paragraphs that alone exceed the limit
		for len(para) > limit {
			flush()
			chunks = append(chunks, para[:limit])
			para = para[limit:]
		}
		if para == "" {
			continue
		}

		need := len(para)
		if buf.Len() > 0 {
			need += 2 // separator
		}
		if buf.Len()+need > limit {
			flush()
		}
		if buf.Len() > 0 {
			buf.WriteString("\n\n")
		}
		buf.WriteString(para)
	}
	flush()

	return chunks
}
