// Package source retrieves raw snapshots from the external signal sources:
// the Steam store APIs, the community forum, and configured RSS feeds.
// Snapshots come back as plain item sequences; deduplication happens in
// pkg/fetcher, never here.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nightfeed/nightfeed/pkg/store"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Steam talks to the Steam store and community endpoints
type Steam struct {
	client    *http.Client
	userAgent string

	storeURL     string // store.steampowered.com, overridable in tests
	communityURL string // steamcommunity.com
	steam250URL  string // steam250.com trending fallback
}

// NewSteam creates a Steam source client
func NewSteam(timeout time.Duration) *Steam {
	return &Steam{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent:    defaultUserAgent,
		storeURL:     "https://store.steampowered.com",
		communityURL: "https://steamcommunity.com",
		steam250URL:  "https://steam250.com",
	}
}

// FetchReviews retrieves the most recent reviews for an app
func (s *Steam) FetchReviews(ctx context.Context, appID int64, maxItems int) ([]store.Review, error) {
	url := fmt.Sprintf("%s/appreviews/%d?json=1&filter=recent&language=all&num_per_page=%d",
		s.storeURL, appID, maxItems)

	var payload struct {
		Success int `json:"success"`
		Reviews []struct {
			RecommendationID string `json:"recommendationid"`
			Author           struct {
				SteamID             string `json:"steamid"`
				PlaytimeForever     int64  `json:"playtime_forever"`
				PlaytimeLastTwoWeek int64  `json:"playtime_last_two_weeks"`
			} `json:"author"`
			Language         string `json:"language"`
			Review           string `json:"review"`
			TimestampCreated int64  `json:"timestamp_created"`
			TimestampUpdated int64  `json:"timestamp_updated"`
			VotedUp          bool   `json:"voted_up"`
		} `json:"reviews"`
	}

	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("fetch reviews for app %d: %w", appID, err)
	}

	now := time.Now().Unix()
	reviews := make([]store.Review, 0, len(payload.Reviews))
	for _, r := range payload.Reviews {
		reviews = append(reviews, store.Review{
			RecommendationID: r.RecommendationID,
			AuthorID:         r.Author.SteamID,
			VotedUp:          r.VotedUp,
			Created:          r.TimestampCreated,
			Updated:          r.TimestampUpdated,
			Body:             r.Review,
			Language:         r.Language,
			PlaytimeForever:  r.Author.PlaytimeForever,
			PlaytimeRecent:   r.Author.PlaytimeLastTwoWeek,
			Fetched:          now,
		})
	}
	return reviews, nil
}

// FetchGameName resolves an app's display name from the store API. Falls
// back to the numeric id as string on any failure, never errors.
func (s *Steam) FetchGameName(ctx context.Context, appID int64) string {
	url := fmt.Sprintf("%s/api/appdetails?appids=%d", s.storeURL, appID)
	fallback := fmt.Sprintf("%d", appID)

	var payload map[string]struct {
		Success bool `json:"success"`
		Data    struct {
			Name string `json:"name"`
		} `json:"data"`
	}
	if err := s.getJSON(ctx, url, &payload); err != nil {
		log.Printf("[WARN] failed to fetch game name for %d: %v", appID, err)
		return fallback
	}

	entry, ok := payload[fallback]
	if !ok || !entry.Success || entry.Data.Name == "" {
		log.Printf("[WARN] no game name available for %d, using app id", appID)
		return fallback
	}
	return entry.Data.Name
}

// FetchTopSellers retrieves the current top sellers ranking, positions
// assigned in API order starting at 1.
func (s *Steam) FetchTopSellers(ctx context.Context, maxItems int) ([]store.Ranking, error) {
	url := s.storeURL + "/api/featuredcategories"

	var payload struct {
		TopSellers struct {
			Items []struct {
				ID   int64  `json:"id"`
				Name string `json:"name"`
			} `json:"items"`
		} `json:"top_sellers"`
	}
	if err := s.getJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("fetch top sellers: %w", err)
	}

	items := payload.TopSellers.Items
	if len(items) > maxItems {
		items = items[:maxItems]
	}

	rankings := make([]store.Ranking, 0, len(items))
	for i, item := range items {
		name := item.Name
		if name == "" {
			name = "Unknown"
		}
		rankings = append(rankings, store.Ranking{AppID: item.ID, Name: name, Rank: i + 1})
	}
	return rankings, nil
}

func (s *Steam) getJSON(ctx context.Context, url string, out interface{}) error {
	body, err := s.get(ctx, url)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (s *Steam) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
	return resp.Body, nil
}
