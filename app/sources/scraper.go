package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/typefeed/typefeed/app/news"
)

const scrapeTimeout = 15 * time.Second

// scrapeUserAgent mimics a browser; several landing pages serve a
// stripped markup variant to unknown agents.
const scrapeUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

// ScrapeSelectors addresses the pieces of one content block on a
// scraped landing page.
type ScrapeSelectors struct {
	Block       string `yaml:"block"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	Image       string `yaml:"image"`
}

// DefaultScrapeSelectors covers the common article-card markup shape.
var DefaultScrapeSelectors = ScrapeSelectors{
	Block:       "article",
	Title:       "h2, h3",
	Description: "p",
	Link:        "a",
	Image:       "img",
}

// ScrapeSource extracts article teasers from a single landing page.
// It serves exactly one category and returns empty for every other.
type ScrapeSource struct {
	name      string
	pageURL   string
	category  news.Category
	selectors ScrapeSelectors
	client    *http.Client
}

func NewScrapeSource(name, pageURL string, category news.Category, selectors ScrapeSelectors, client *http.Client) *ScrapeSource {
	// Each field defaults independently; partial selector configs are
	// common and an empty selector matches nothing in goquery.
	if selectors.Block == "" {
		selectors.Block = DefaultScrapeSelectors.Block
	}
	if selectors.Title == "" {
		selectors.Title = DefaultScrapeSelectors.Title
	}
	if selectors.Description == "" {
		selectors.Description = DefaultScrapeSelectors.Description
	}
	if selectors.Link == "" {
		selectors.Link = DefaultScrapeSelectors.Link
	}
	if selectors.Image == "" {
		selectors.Image = DefaultScrapeSelectors.Image
	}
	return &ScrapeSource{
		name:      name,
		pageURL:   pageURL,
		category:  category,
		selectors: selectors,
		client:    client,
	}
}

func (s *ScrapeSource) Name() string {
	return s.name
}

func (s *ScrapeSource) Fetch(ctx context.Context, category news.Category) []news.RawArticle {
	if category != s.category {
		return nil
	}

	doc, err := s.fetchPage(ctx)
	if err != nil {
		slog.Warn("Scrape fetch failed", "source", s.name, "url", s.pageURL, "error", err)
		return nil
	}

	base, err := url.Parse(s.pageURL)
	if err != nil {
		slog.Warn("Scrape base URL invalid", "source", s.name, "url", s.pageURL, "error", err)
		return nil
	}

	var articles []news.RawArticle
	doc.Find(s.selectors.Block).Each(func(_ int, block *goquery.Selection) {
		title := strings.TrimSpace(block.Find(s.selectors.Title).First().Text())
		description := strings.TrimSpace(block.Find(s.selectors.Description).First().Text())
		href, _ := block.Find(s.selectors.Link).First().Attr("href")

		// Skip blocks missing any of the essentials.
		if title == "" || description == "" || href == "" {
			return
		}

		link := resolveURL(base, href)
		if link == "" {
			return
		}

		raw := news.RawArticle{
			Title:        title,
			Description:  description,
			URL:          link,
			Source:       s.name,
			CategoryHint: string(s.category),
			PublishedAt:  time.Now().UTC(),
		}
		if src, ok := block.Find(s.selectors.Image).First().Attr("src"); ok {
			raw.ImageURL = resolveURL(base, src)
		}

		articles = append(articles, raw)
	})

	return articles
}

func (s *ScrapeSource) fetchPage(ctx context.Context) (*goquery.Document, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, scrapeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, s.pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scrapeUserAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func resolveURL(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
