// Package feeds ingests RSS and Atom feeds as article records.
package feeds

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/infoai1/spiritual-reflections/internal/models"
)

const fetchTimeout = 30 * time.Second

// Fetcher reads a fixed list of feeds.
type Fetcher struct {
	urls   []string
	parser *gofeed.Parser
}

// NewFetcher creates a fetcher for the given feed URLs. Blank entries are
// ignored.
func NewFetcher(urls []string) *Fetcher {
	clean := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			clean = append(clean, u)
		}
	}
	return &Fetcher{urls: clean, parser: gofeed.NewParser()}
}

// URLs returns the configured feed URLs.
func (f *Fetcher) URLs() []string {
	return f.urls
}

// FetchFeed retrieves one feed and returns up to maxCount of its items.
func (f *Fetcher) FetchFeed(ctx context.Context, feedURL string, maxCount int) ([]models.ArticleRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", feedURL, err)
	}
	return itemsToRecords(feed, maxCount), nil
}

// FetchAll retrieves every configured feed concurrently. Feeds that fail are
// logged and skipped.
func (f *Fetcher) FetchAll(ctx context.Context, maxPerFeed int) []models.ArticleRecord {
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results = make([][]models.ArticleRecord, len(f.urls))
	)

	for i, u := range f.urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			records, err := f.FetchFeed(ctx, u, maxPerFeed)
			if err != nil {
				log.Warn().Err(err).Str("feed", u).Msg("Feed fetch failed")
				return
			}
			mu.Lock()
			results[i] = records
			mu.Unlock()
		}(i, u)
	}
	wg.Wait()

	var out []models.ArticleRecord
	for _, r := range results {
		out = append(out, r...)
	}
	log.Debug().Int("feeds", len(f.urls)).Int("articles", len(out)).Msg("Fetched feeds")
	return out
}

func itemsToRecords(feed *gofeed.Feed, maxCount int) []models.ArticleRecord {
	count := len(feed.Items)
	if maxCount > 0 && maxCount < count {
		count = maxCount
	}

	source := strings.TrimSpace(feed.Title)
	if source == "" {
		source = "RSS"
	}

	out := make([]models.ArticleRecord, 0, count)
	for _, item := range feed.Items[:count] {
		if strings.TrimSpace(item.Title) == "" {
			continue
		}

		rec := models.ArticleRecord{
			Title:       strings.TrimSpace(item.Title),
			Description: item.Description,
			Content:     item.Content,
			Source:      source,
			URL:         item.Link,
		}
		if rec.Content == "" {
			rec.Content = item.Description
		}
		if item.Author != nil {
			rec.Author = item.Author.Name
		}
		if item.Image != nil {
			rec.ImageURL = item.Image.URL
		}
		switch {
		case item.PublishedParsed != nil:
			rec.PublishedAt = *item.PublishedParsed
		case item.UpdatedParsed != nil:
			rec.PublishedAt = *item.UpdatedParsed
		}
		rec.ID = rec.DerivedID()
		out = append(out, rec)
	}
	return out
}
