package source

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"github.com/nightfeed/nightfeed/pkg/store"
)

var (
	gidRe     = regexp.MustCompile(`/discussions/\d+/(\d+)/?`)
	pinnedRe  = regexp.MustCompile(`^PINNED:\s*`)
	numberRe  = regexp.MustCompile(`(\d+)`)
	sanitizer = bluemonday.StrictPolicy()
)

const maxSnippetLen = 200

// FetchDiscussions scrapes the app's community forum topic list. The list
// view carries no author steam id and no reliable timestamps, so those
// fields come back empty and now respectively.
func (s *Steam) FetchDiscussions(ctx context.Context, appID int64, maxItems int) ([]store.Discussion, error) {
	url := fmt.Sprintf("%s/app/%d/discussions/0/", s.communityURL, appID)

	body, err := s.get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch discussions for app %d: %w", appID, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse forum page: %w", err)
	}

	now := time.Now().Unix()
	var discussions []store.Discussion

	doc.Find("div.forum_topic").EachWithBreak(func(_ int, topic *goquery.Selection) bool {
		href, ok := topic.Find("a.forum_topic_overlay").Attr("href")
		if !ok {
			return true
		}
		m := gidRe.FindStringSubmatch(href)
		if m == nil {
			return true
		}

		title := strings.TrimSpace(topic.Find("div.forum_topic_name").Text())
		if title == "" {
			return true
		}
		title = pinnedRe.ReplaceAllString(title, "")

		author := strings.TrimSpace(topic.Find("div.forum_topic_op").Text())
		if author == "" {
			author = "Unknown"
		}

		pinned := topic.Find("span.sticky_label").Length() > 0 || topic.HasClass("sticky")

		discussions = append(discussions, store.Discussion{
			GID:        m[1],
			Title:      title,
			AuthorName: author,
			Created:    now,
			Snippet:    extractSnippet(topic),
			Replies:    extractCount(topic.Find("div.forum_topic_reply_count").Text()),
			Pinned:     pinned,
			Fetched:    now,
		})
		return len(discussions) < maxItems
	})

	return discussions, nil
}

// extractSnippet pulls the hover-preview text out of the tooltip attribute,
// stripped of markup and truncated.
func extractSnippet(topic *goquery.Selection) string {
	tooltip, ok := topic.Attr("data-tooltip-forum")
	if !ok || tooltip == "" {
		return ""
	}

	snippet := strings.TrimSpace(sanitizer.Sanitize(tooltip))
	if len(snippet) > maxSnippetLen {
		snippet = snippet[:maxSnippetLen]
	}
	return snippet
}

func extractCount(text string) int {
	m := numberRe.FindString(strings.TrimSpace(text))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
