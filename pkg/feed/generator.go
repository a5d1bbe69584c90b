// Package feed holds the publishing collaborators: the podcast feed index
// generator and the TTS synthesis client.
package feed

import (
	"encoding/xml"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Generator writes the podcast feed index over the episodes directory
type Generator struct {
	title       string
	description string
	baseURL     string
	maxEpisodes int
}

// NewGenerator creates a feed generator publishing under the given base URL
func NewGenerator(title, description, baseURL string, maxEpisodes int) *Generator {
	return &Generator{
		title:       title,
		description: description,
		baseURL:     strings.TrimRight(baseURL, "/"),
		maxEpisodes: maxEpisodes,
	}
}

// Generate scans the episodes directory for dated mp3 files and writes the
// feed index to outputPath, newest episodes first. Files that do not look
// like dated episodes are ignored.
func (g *Generator) Generate(episodesDir, outputPath string) error {
	entries, err := os.ReadDir(episodesDir)
	if err != nil {
		return fmt.Errorf("read episodes dir: %w", err)
	}

	type episode struct {
		date string
		size int64
	}
	var episodes []episode
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".mp3") {
			continue
		}
		date := strings.TrimSuffix(name, ".mp3")
		if _, perr := time.Parse("2006-01-02", date); perr != nil {
			continue
		}
		info, ierr := entry.Info()
		if ierr != nil {
			log.Printf("[WARN] skipping episode %s: %v", name, ierr)
			continue
		}
		episodes = append(episodes, episode{date: date, size: info.Size()})
	}

	sort.Slice(episodes, func(i, j int) bool { return episodes[i].date > episodes[j].date })
	if len(episodes) > g.maxEpisodes {
		episodes = episodes[:g.maxEpisodes]
	}

	items := make([]*RSSItem, 0, len(episodes))
	for _, ep := range episodes {
		pubDate, _ := time.Parse("2006-01-02", ep.date)
		items = append(items, &RSSItem{
			Title:       fmt.Sprintf("%s - %s", g.title, ep.date),
			GUID:        "nightfeed-" + ep.date,
			Description: fmt.Sprintf("%s - %s", g.description, ep.date),
			PubDate:     pubDate.Format(time.RFC1123Z),
			Enclosure: &Enclosure{
				URL:    fmt.Sprintf("%s/episodes/%s.mp3", g.baseURL, ep.date),
				Length: ep.size,
				Type:   "audio/mpeg",
			},
		})
	}

	feed := &RSS{
		Version: "2.0",
		Atom:    "http://www.w3.org/2005/Atom",
		Channel: &RSSChannel{
			Title:         g.title,
			Link:          g.baseURL + "/",
			Description:   g.description,
			AtomLink:      &AtomLink{Href: g.baseURL + "/feed.xml", Rel: "self", Type: "application/rss+xml"},
			LastBuildDate: time.Now().Format(time.RFC1123Z),
			Items:         items,
		},
	}

	output, err := xml.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal feed: %w", err)
	}

	if err := os.WriteFile(outputPath, []byte(xml.Header+string(output)), 0o644); err != nil { //nolint:gosec // feed is public
		return fmt.Errorf("write feed index: %w", err)
	}
	log.Printf("[INFO] feed index written with %d episodes to %s", len(items), outputPath)
	return nil
}

// PruneEpisodes removes dated episodes older than the retention window.
// Returns the number of files removed.
func PruneEpisodes(episodesDir string, retentionDays int) int {
	entries, err := os.ReadDir(episodesDir)
	if err != nil {
		log.Printf("[WARN] cannot read episodes dir for pruning: %v", err)
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasSuffix(name, ".mp3") {
			continue
		}
		date, perr := time.Parse("2006-01-02", strings.TrimSuffix(name, ".mp3"))
		if perr != nil {
			continue
		}
		if date.Before(cutoff) {
			if err := os.Remove(filepath.Join(episodesDir, name)); err != nil {
				log.Printf("[WARN] failed to remove old episode %s: %v", name, err)
				continue
			}
			removed++
		}
	}
	if removed > 0 {
		log.Printf("[INFO] pruned %d episodes older than %d days", removed, retentionDays)
	}
	return removed
}
