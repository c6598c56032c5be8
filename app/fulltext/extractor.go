// Package fulltext backfills persisted article snippets with the full
// body text scraped from the live page.
package fulltext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability"
	"github.com/PuerkitoBio/goquery"

	"github.com/typefeed/typefeed/app/news"
)

const (
	fetchTimeout = 10 * time.Second
	maxBodySize  = 10 * 1024 * 1024

	// A qualifying container needs more than this many paragraphs.
	minContainerParagraphs = 3
	// Assembled text below this length falls through to the next stage.
	minContentLength = 500
	// Site-wide paragraph sweep ignores anything at or below this,
	// which is mostly nav and footer boilerplate.
	minParagraphLength = 40

	browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// noiseSelectors are removed from the document before any extraction.
var noiseSelectors = []string{
	"script", "style", "noscript", "nav", "header", "footer", "aside",
	"form", "iframe",
	".ad", ".ads", ".advertisement", ".ad-container", ".sponsored",
	".comments", ".comment-section", "#comments",
	".social-share", ".share-buttons", ".related-articles", ".newsletter",
}

// containerSelectors are tried in priority order for the article body.
var containerSelectors = []string{
	".article-body",
	".story-body",
	".entry-content",
	".post-content",
	".article-content",
	".content-body",
	"article",
	"main",
}

// Extractor fetches article pages and pulls out their body text.
type Extractor struct {
	client *http.Client
}

func NewExtractor(client *http.Client) *Extractor {
	return &Extractor{client: client}
}

// FetchFullContent returns the cleaned full text of the page at
// articleURL, or the empty string on any failure. It never returns an
// error: a missing body just means the caller keeps its snippet.
func (e *Extractor) FetchFullContent(ctx context.Context, articleURL string) string {
	data, err := e.fetchPage(ctx, articleURL)
	if err != nil {
		slog.Warn("Full-content fetch failed", "url", articleURL, "error", err)
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Full-content parse failed", "url", articleURL, "error", err)
		return ""
	}

	for _, selector := range noiseSelectors {
		doc.Find(selector).Remove()
	}

	if content := extractFromContainers(doc); content != "" {
		return content
	}

	if content := extractWithReadability(data, articleURL); content != "" {
		return content
	}

	return extractSiteWideParagraphs(doc)
}

// extractFromContainers tries each prioritized container selector and
// keeps the first whose paragraphs assemble into a long enough body.
func extractFromContainers(doc *goquery.Document) string {
	for _, selector := range containerSelectors {
		container := doc.Find(selector).First()
		if container.Length() == 0 {
			continue
		}

		paragraphs := container.Find("p")
		if paragraphs.Length() <= minContainerParagraphs {
			continue
		}

		text := joinParagraphs(paragraphs)
		if len(text) >= minContentLength {
			return text
		}
	}

	return ""
}

// extractWithReadability runs the readability heuristic over the raw
// document as a middle fallback between the selector pass and the
// site-wide paragraph sweep.
func extractWithReadability(data []byte, articleURL string) string {
	pageURL, err := url.Parse(articleURL)
	if err != nil {
		pageURL = nil
	}

	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		slog.Debug("Readability extraction failed", "url", articleURL, "error", err)
		return ""
	}

	text := news.Clean(article.TextContent)
	if len(text) < minContentLength {
		return ""
	}
	return text
}

// extractSiteWideParagraphs is the last resort: every paragraph on the
// page longer than the noise floor, in document order.
func extractSiteWideParagraphs(doc *goquery.Document) string {
	var kept []string
	doc.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := news.Clean(p.Text())
		if len(text) > minParagraphLength {
			kept = append(kept, text)
		}
	})
	return strings.Join(kept, "\n\n")
}

func joinParagraphs(paragraphs *goquery.Selection) string {
	var kept []string
	paragraphs.Each(func(_ int, p *goquery.Selection) {
		if text := news.Clean(p.Text()); text != "" {
			kept = append(kept, text)
		}
	})
	return strings.Join(kept, "\n\n")
}

func (e *Extractor) fetchPage(ctx context.Context, articleURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, articleURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
}
