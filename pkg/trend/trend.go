// Package trend derives headline observations from a day's collected
// signals: big ranking movers, fresh top-10 entries, and topic activity in
// the news stream.
package trend

import (
	"fmt"
	"strings"

	"github.com/nightfeed/nightfeed/pkg/fetcher"
	"github.com/nightfeed/nightfeed/pkg/rank"
)

const (
	bigMoverThreshold = 5 // absolute rank change that counts as a big move
	deepDiveThreshold = 8
	aiNewsThreshold   = 3
	gameNewsThreshold = 5
)

var (
	aiKeywords   = []string{"ai", "artificial intelligence", "machine learning", "gpt", "llm", "neural"}
	gameKeywords = []string{"game", "steam", "playstation", "xbox", "nintendo", "indie"}
)

// Analyze summarizes ranking movement and news activity as a bullet list.
// Always returns at least one line so the downstream script never gets an
// empty trends section.
func Analyze(topSellers []rank.Delta, news []fetcher.NewsItem) string {
	var trends []string

	var biggestClimb, biggestFall *rank.Delta
	for i := range topSellers {
		d := &topSellers[i]
		if d.Change == nil || abs(*d.Change) < bigMoverThreshold {
			continue
		}
		if *d.Change > 0 && (biggestClimb == nil || *d.Change > *biggestClimb.Change) {
			biggestClimb = d
		}
		if *d.Change < 0 && (biggestFall == nil || *d.Change < *biggestFall.Change) {
			biggestFall = d
		}
	}
	if biggestClimb != nil {
		trends = append(trends, fmt.Sprintf("Biggest climb: %s (+%d positions, now #%d)",
			biggestClimb.Name, *biggestClimb.Change, biggestClimb.Rank))
	}
	if biggestFall != nil {
		trends = append(trends, fmt.Sprintf("Biggest fall: %s (%d positions, now #%d)",
			biggestFall.Name, *biggestFall.Change, biggestFall.Rank))
	}

	if names := newTop10Names(topSellers); len(names) > 0 {
		trends = append(trends, "New in top 10: "+strings.Join(names, ", "))
	}

	aiCount := countByKeywords(news, aiKeywords)
	gameCount := countByKeywords(news, gameKeywords)
	if aiCount >= aiNewsThreshold {
		trends = append(trends, fmt.Sprintf("Elevated AI activity (%d stories)", aiCount))
	}
	if gameCount >= gameNewsThreshold {
		trends = append(trends, fmt.Sprintf("Busy day in gaming news (%d stories)", gameCount))
	}

	if len(trends) == 0 {
		trends = append(trends, "Quiet day with no significant ranking movement")
	}

	var sb strings.Builder
	for _, t := range trends {
		sb.WriteString("- ")
		sb.WriteString(t)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// DeepDiveTopic is the day's featured segment subject
type DeepDiveTopic struct {
	Type   string `json:"type"` // ranking_mover, news_topic, ranking_leader
	Game   string `json:"game,omitempty"`
	Rank   int    `json:"rank,omitempty"`
	Change int    `json:"change,omitempty"`
	Title  string `json:"title,omitempty"`
	Source string `json:"source,omitempty"`
	URL    string `json:"url,omitempty"`
}

// DeepDive prefers dramatic ranking moves, then high-priority news, then
// the current chart leader.
func DeepDive(topSellers []rank.Delta, news []fetcher.NewsItem) *DeepDiveTopic {
	limit := len(topSellers)
	if limit > 15 {
		limit = 15
	}

	var best *rank.Delta
	for i := 0; i < limit; i++ {
		d := &topSellers[i]
		if d.Change == nil || abs(*d.Change) < deepDiveThreshold {
			continue
		}
		if best == nil || abs(*d.Change) > abs(*best.Change) {
			best = d
		}
	}
	if best != nil {
		return &DeepDiveTopic{Type: "ranking_mover", Game: best.Name, Rank: best.Rank, Change: *best.Change}
	}

	for _, item := range news {
		if item.Priority > 0 {
			return &DeepDiveTopic{Type: "news_topic", Title: item.Title, Source: item.Source, URL: item.URL}
		}
	}

	if len(topSellers) > 0 {
		return &DeepDiveTopic{Type: "ranking_leader", Game: topSellers[0].Name, Rank: topSellers[0].Rank}
	}
	return nil
}

// newTop10Names returns up to three names that entered the top 10 today
func newTop10Names(topSellers []rank.Delta) []string {
	var names []string
	limit := len(topSellers)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit && len(names) < 3; i++ {
		if topSellers[i].Change == nil {
			names = append(names, topSellers[i].Name)
		}
	}
	return names
}

func countByKeywords(news []fetcher.NewsItem, keywords []string) int {
	count := 0
	for _, item := range news {
		title := strings.ToLower(item.Title)
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				count++
				break
			}
		}
	}
	return count
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
