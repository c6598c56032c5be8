package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/typefeed/typefeed/app/news"
)

const (
	newsAPIEndpoint = "https://newsapi.org/v2/top-headlines"
	newsAPITimeout  = 10 * time.Second
	newsAPIPageSize = 20
)

// newsAPICategories translates our vocabulary into the upstream's.
// The general bucket omits the category filter entirely; categories
// the upstream doesn't know are folded onto its nearest bucket.
var newsAPICategories = map[news.Category]string{
	news.CategoryGeneral:       "",
	news.CategoryWorld:         "general",
	news.CategoryPolitics:      "general",
	news.CategorySports:        "sports",
	news.CategoryTechnology:    "technology",
	news.CategoryBusiness:      "business",
	news.CategoryFintech:       "business",
	news.CategoryEntertainment: "entertainment",
	news.CategoryScience:       "science",
}

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		URLToImage  string `json:"urlToImage"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// NewsAPISource pulls top headlines from the NewsAPI REST endpoint.
// Without an API key configured it stays registered but always
// returns empty.
type NewsAPISource struct {
	apiKey    string
	client    *http.Client
	userAgent string
	endpoint  string
}

func NewNewsAPISource(apiKey string, client *http.Client, userAgent string) *NewsAPISource {
	return &NewsAPISource{
		apiKey:    apiKey,
		client:    client,
		userAgent: userAgent,
		endpoint:  newsAPIEndpoint,
	}
}

func (s *NewsAPISource) Name() string {
	return "newsapi"
}

func (s *NewsAPISource) Fetch(ctx context.Context, category news.Category) []news.RawArticle {
	if s.apiKey == "" {
		slog.Debug("NewsAPI key not configured, skipping", "category", category)
		return nil
	}

	resp, err := s.request(ctx, category)
	if err != nil {
		slog.Warn("NewsAPI request failed", "category", category, "error", err)
		return nil
	}

	articles := make([]news.RawArticle, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		if a.URL == "" || a.Title == "" {
			continue
		}

		raw := news.RawArticle{
			Title:        a.Title,
			Description:  a.Description,
			URL:          a.URL,
			Source:       a.Source.Name,
			ImageURL:     a.URLToImage,
			CategoryHint: string(category),
			PublishedAt:  time.Now().UTC(),
		}
		if raw.Source == "" {
			raw.Source = s.Name()
		}
		if ts, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			raw.PublishedAt = ts.UTC()
		}

		articles = append(articles, raw)
	}

	return articles
}

func (s *NewsAPISource) request(ctx context.Context, category news.Category) (*newsAPIResponse, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, newsAPITimeout)
	defer cancel()

	params := url.Values{}
	params.Set("apiKey", s.apiKey)
	params.Set("pageSize", fmt.Sprintf("%d", newsAPIPageSize))
	params.Set("language", "en")
	if upstream := newsAPICategories[category]; upstream != "" {
		params.Set("category", upstream)
	}

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
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

	var decoded newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if decoded.Status != "ok" {
		return nil, fmt.Errorf("upstream status %q", decoded.Status)
	}

	return &decoded, nil
}
