package database

import (
	"context"
	"time"

	"github.com/typefeed/typefeed/app/news"
)

type ArticleRepository interface {
	// UpsertArticle inserts the article if its URL is unseen and
	// reports whether a row was created. An existing row is left
	// completely untouched so backfilled content is never clobbered.
	UpsertArticle(ctx context.Context, article news.Article) (bool, error)

	GetByURL(ctx context.Context, url string) (*Article, error)
	GetRecentByCategory(ctx context.Context, category news.Category, limit int) ([]Article, error)

	// SetFullContent replaces the snippet with full text and marks the
	// row as backfilled.
	SetFullContent(ctx context.Context, id string, content string) error

	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)

	CountByCategory(ctx context.Context) (map[string]int, error)
	GetArticleCount(ctx context.Context) (int, error)
}

type SeenRepository interface {
	// GetSeenIDs returns which of the candidate article IDs the user
	// has already been served.
	GetSeenIDs(ctx context.Context, userID string, articleIDs []string) (map[string]bool, error)

	// MarkSeen upserts the exposure record, refreshing seen_at on
	// repeats.
	MarkSeen(ctx context.Context, userID, articleID string) error

	// DeleteOrphaned drops seen records whose article has been
	// evicted, keeping the relation bounded.
	DeleteOrphaned(ctx context.Context) (int64, error)
}
