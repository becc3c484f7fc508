// Package news fetches the EMA news RSS feed. It complements the register
// records: filtering the feed by product names surfaces announcements
// about products in the register.
package news

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// DefaultFeedURL is the EMA news and updates RSS feed.
const DefaultFeedURL = "https://www.ema.europa.eu/en/rss.xml"

// Item is one feed entry.
type Item struct {
	Title     string     `json:"title"`
	Link      string     `json:"link"`
	Summary   string     `json:"summary"`
	Published *time.Time `json:"published,omitempty"`
}

// Fetch retrieves and parses a news feed. The gofeed library handles both
// RSS and Atom transparently.
func Fetch(ctx context.Context, url string) ([]Item, error) {
	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	items := make([]Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item := Item{
			Title:   entry.Title,
			Link:    entry.Link,
			Summary: entry.Description,
		}
		if entry.PublishedParsed != nil {
			item.Published = entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			item.Published = entry.UpdatedParsed
		}
		items = append(items, item)
	}

	return items, nil
}

// FilterByProducts returns the items whose title or summary mentions any of
// the given product names, case-insensitively. Empty names are ignored.
func FilterByProducts(items []Item, names []string) []Item {
	var needles []string
	for _, name := range names {
		name = strings.TrimSpace(strings.ToLower(name))
		if name != "" {
			needles = append(needles, name)
		}
	}
	if len(needles) == 0 {
		return items
	}

	var matched []Item
	for _, item := range items {
		haystack := strings.ToLower(item.Title + " " + item.Summary)
		for _, needle := range needles {
			if strings.Contains(haystack, needle) {
				matched = append(matched, item)
				break
			}
		}
	}
	return matched
}
