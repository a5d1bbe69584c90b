package trend

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nightfeed/nightfeed/pkg/fetcher"
	"github.com/nightfeed/nightfeed/pkg/rank"
)

func change(n int) *int { return &n }

func TestAnalyze_BigMovers(t *testing.T) {
	topSellers := []rank.Delta{
		{Name: "Climber", Rank: 2, Change: change(7)},
		{Name: "Faller", Rank: 18, Change: change(-9)},
		{Name: "Stable", Rank: 5, Change: change(1)},
	}

	result := Analyze(topSellers, nil)
	assert.Contains(t, result, "Biggest climb: Climber (+7 positions, now #2)")
	assert.Contains(t, result, "Biggest fall: Faller (-9 positions, now #18)")
	assert.NotContains(t, result, "Stable", "small moves are not trends")
}

func TestAnalyze_NewTop10Entries(t *testing.T) {
	topSellers := []rank.Delta{
		{Name: "Newcomer A", Rank: 1, Change: nil},
		{Name: "Veteran", Rank: 2, Change: change(0)},
		{Name: "Newcomer B", Rank: 3, Change: nil},
	}

	result := Analyze(topSellers, nil)
	assert.Contains(t, result, "New in top 10: Newcomer A, Newcomer B")
}

func TestAnalyze_NewEntryOutsideTop10Ignored(t *testing.T) {
	topSellers := make([]rank.Delta, 12)
	for i := range topSellers {
		topSellers[i] = rank.Delta{Name: "Veteran", Rank: i + 1, Change: change(0)}
	}
	topSellers[11] = rank.Delta{Name: "Outsider", Rank: 12, Change: nil}

	result := Analyze(topSellers, nil)
	assert.NotContains(t, result, "Outsider")
}

func TestAnalyze_KeywordActivity(t *testing.T) {
	news := []fetcher.NewsItem{
		{Title: "New AI model released"},
		{Title: "GPT assistant update"},
		{Title: "Neural rendering breakthrough"},
		{Title: "Steam sale starts"},
	}

	result := Analyze(nil, news)
	assert.Contains(t, result, "Elevated AI activity (3 stories)")
	assert.NotContains(t, result, "gaming news", "below the gaming threshold")
}

func TestAnalyze_QuietDayFallback(t *testing.T) {
	result := Analyze(nil, nil)
	assert.Equal(t, "- Quiet day with no significant ranking movement", result)
}

func TestAnalyze_BulletFormat(t *testing.T) {
	topSellers := []rank.Delta{{Name: "Climber", Rank: 1, Change: change(6)}}
	result := Analyze(topSellers, nil)
	for _, line := range strings.Split(result, "\n") {
		assert.True(t, strings.HasPrefix(line, "- "))
	}
}

func TestDeepDive_PrefersBigMover(t *testing.T) {
	topSellers := []rank.Delta{
		{Name: "Leader", Rank: 1, Change: change(0)},
		{Name: "Rocket", Rank: 3, Change: change(12)},
	}
	news := []fetcher.NewsItem{{Title: "Story", Source: "wire", Priority: 2}}

	topic := DeepDive(topSellers, news)
	require.NotNil(t, topic)
	assert.Equal(t, "ranking_mover", topic.Type)
	assert.Equal(t, "Rocket", topic.Game)
	assert.Equal(t, 12, topic.Change)
}

func TestDeepDive_FallsBackToPriorityNews(t *testing.T) {
	topSellers := []rank.Delta{{Name: "Leader", Rank: 1, Change: change(2)}}
	news := []fetcher.NewsItem{
		{Title: "Ordinary", Source: "misc", Priority: 0},
		{Title: "Important", Source: "wire", Priority: 1, URL: "https://example.com/a"},
	}

	topic := DeepDive(topSellers, news)
	require.NotNil(t, topic)
	assert.Equal(t, "news_topic", topic.Type)
	assert.Equal(t, "Important", topic.Title)
}

func TestDeepDive_FallsBackToLeader(t *testing.T) {
	topSellers := []rank.Delta{{Name: "Leader", Rank: 1, Change: change(1)}}

	topic := DeepDive(topSellers, nil)
	require.NotNil(t, topic)
	assert.Equal(t, "ranking_leader", topic.Type)
	assert.Equal(t, "Leader", topic.Game)
}

func TestDeepDive_NothingToFeature(t *testing.T) {
	assert.Nil(t, DeepDive(nil, nil))
}
