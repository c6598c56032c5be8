package database

import (
	"time"

	"github.com/typefeed/typefeed/app/news"
)

// Article is a persisted article row. URL is the dedup key, unique
// across all sources. Content is written once more after insertion, by
// the backfill path, which also flips IsFullContent; that transition
// is one-way.
type Article struct {
	ID            string
	Title         string
	Content       string
	Source        string
	URL           string
	ImageURL      string
	Category      news.Category
	PublishedAt   time.Time
	IsFullContent bool
	CreatedAt     time.Time
}

// Normalized converts a row back into the wire-facing article shape.
func (a Article) Normalized() news.Article {
	return news.Article{
		Title:       a.Title,
		Content:     a.Content,
		Source:      a.Source,
		URL:         a.URL,
		ImageURL:    a.ImageURL,
		Category:    a.Category,
		PublishedAt: a.PublishedAt,
	}
}

// SeenArticle records one user's exposure to one article. Repeat
// exposure refreshes SeenAt.
type SeenArticle struct {
	UserID    string
	ArticleID string
	SeenAt    time.Time
}
