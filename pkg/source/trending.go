package source

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// TrendingGame is one entry from the new-and-trending listing, unranked
type TrendingGame struct {
	AppID int64  `json:"app_id"`
	Name  string `json:"name"`
}

var appURLRe = regexp.MustCompile(`/app/(\d+)`)

// FetchTrending scrapes the store's new releases tab for trending games.
// The store markup shifts over time, so when scraping yields too few
// results the steam250 listing serves as fallback.
func (s *Steam) FetchTrending(ctx context.Context, maxItems int) ([]TrendingGame, error) {
	games, err := s.scrapeTrending(ctx, maxItems)
	if err != nil {
		log.Printf("[WARN] trending scrape failed: %v", err)
	}

	if len(games) < 5 {
		log.Printf("[INFO] trending scrape yielded %d results, trying steam250 fallback", len(games))
		fallback, ferr := s.fetchSteam250(ctx, maxItems)
		if ferr != nil {
			if err != nil {
				return nil, fmt.Errorf("fetch trending: %w", err)
			}
			return games, nil
		}
		return fallback, nil
	}
	return games, nil
}

func (s *Steam) scrapeTrending(ctx context.Context, maxItems int) ([]TrendingGame, error) {
	body, err := s.get(ctx, s.storeURL+"/?tab=newreleases")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse store page: %w", err)
	}

	seen := make(map[int64]bool)
	var games []TrendingGame

	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !strings.Contains(href, "store.steampowered.com") {
			return true
		}
		m := appURLRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		appID, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil || seen[appID] {
			return true
		}

		name := strings.TrimSpace(sel.Text())
		if name == "" {
			name = sel.AttrOr("title", "")
		}
		if len(name) <= 3 { // filter out icon-only links
			return true
		}

		seen[appID] = true
		games = append(games, TrendingGame{AppID: appID, Name: name})
		return len(games) < maxItems
	})

	return games, nil
}

func (s *Steam) fetchSteam250(ctx context.Context, maxItems int) ([]TrendingGame, error) {
	var payload []struct {
		AppID int64  `json:"appid"`
		Name  string `json:"name"`
	}
	if err := s.getJSON(ctx, s.steam250URL+"/trending.json", &payload); err != nil {
		return nil, fmt.Errorf("fetch steam250 trending: %w", err)
	}

	if len(payload) > maxItems {
		payload = payload[:maxItems]
	}
	games := make([]TrendingGame, 0, len(payload))
	for _, g := range payload {
		name := g.Name
		if name == "" {
			name = "Unknown"
		}
		games = append(games, TrendingGame{AppID: g.AppID, Name: name})
	}
	return games, nil
}
