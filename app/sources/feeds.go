package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/typefeed/typefeed/app/news"
)

const (
	feedFetchTimeout = 15 * time.Second
	maxFeedBody      = 5 * 1024 * 1024

	// Items with no description need at least this much title to be
	// worth typing practice.
	minBareTitleLength = 30
)

// FeedSource polls one publisher's RSS/Atom feeds, one URL per
// category it covers.
type FeedSource struct {
	name      string
	feedURLs  map[news.Category]string
	client    *http.Client
	userAgent string
	parser    *gofeed.Parser
}

func NewFeedSource(name string, feedURLs map[news.Category]string, client *http.Client, userAgent string) *FeedSource {
	return &FeedSource{
		name:      name,
		feedURLs:  feedURLs,
		client:    client,
		userAgent: userAgent,
		parser:    gofeed.NewParser(),
	}
}

func (s *FeedSource) Name() string {
	return s.name
}

func (s *FeedSource) Fetch(ctx context.Context, category news.Category) []news.RawArticle {
	feedURL, ok := s.feedURLs[category]
	if !ok {
		return nil
	}

	data, err := s.fetchFeed(ctx, feedURL)
	if err != nil {
		slog.Warn("Feed fetch failed", "source", s.name, "category", category, "error", err)
		return nil
	}

	feed, err := s.parser.ParseString(string(data))
	if err != nil {
		slog.Warn("Feed parse failed", "source", s.name, "category", category, "error", err)
		return nil
	}

	articles := make([]news.RawArticle, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		// Quality gate: drop unusably terse items.
		if item.Description == "" && len(item.Title) < minBareTitleLength {
			continue
		}

		raw := news.RawArticle{
			Title:        item.Title,
			Description:  item.Description,
			URL:          item.Link,
			Source:       s.name,
			CategoryHint: string(category),
			PublishedAt:  time.Now().UTC(),
		}
		if item.PublishedParsed != nil {
			raw.PublishedAt = item.PublishedParsed.UTC()
		}
		if item.Image != nil {
			raw.ImageURL = item.Image.URL
		}

		articles = append(articles, raw)
	}

	return articles
}

func (s *FeedSource) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, feedFetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
}
