// Package aggregator owns the sync/cleanup/reindex operations and the
// rotation-backed read path over the article store.
package aggregator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/typefeed/typefeed/app/database"
	"github.com/typefeed/typefeed/app/news"
	"github.com/typefeed/typefeed/app/rotation"
	"github.com/typefeed/typefeed/app/sources"
)

// DefaultRetention is how long an article stays in the store.
const DefaultRetention = 48 * time.Hour

// Backfill results at or under this length are considered failed and
// the stored snippet is kept.
const minBackfillLength = 500

// ContentExtractor is the backfill collaborator: empty string means
// "nothing usable", never an error.
type ContentExtractor interface {
	FetchFullContent(ctx context.Context, url string) string
}

// Status is the shape served by the status endpoint.
type Status struct {
	Status     string         `json:"status"`
	Provider   string         `json:"provider"`
	Categories map[string]int `json:"categories"`
	Sources    []string       `json:"sources"`
	LastSync   string         `json:"last_sync"`
}

// Service is the aggregation orchestrator.
type Service struct {
	manager   *sources.Manager
	articles  database.ArticleRepository
	seen      database.SeenRepository
	rotation  *rotation.Service
	extractor ContentExtractor
	registry  []sources.Source
	retention time.Duration

	mu          sync.Mutex
	initialized bool
	lastSync    time.Time
}

func NewService(manager *sources.Manager, articles database.ArticleRepository,
	seen database.SeenRepository, rotationSvc *rotation.Service,
	extractor ContentExtractor, registry []sources.Source, retention time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Service{
		manager:   manager,
		articles:  articles,
		seen:      seen,
		rotation:  rotationSvc,
		extractor: extractor,
		registry:  registry,
		retention: retention,
	}
}

// Initialize registers the configured sources exactly once and runs an
// immediate full sync. Safe to call repeatedly; repeat calls are
// no-ops. Periodic scheduling is owned by the task scheduler, not
// armed here.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		slog.Debug("Aggregator already initialized, skipping")
		return nil
	}
	s.initialized = true
	s.mu.Unlock()

	for _, source := range s.registry {
		s.manager.Register(source)
	}

	slog.Info("Aggregator initialized", "sources", len(s.registry))
	return s.SyncAllCategories(ctx)
}

// SyncCategory fetches, normalizes and persists one category. Store
// failures are per-article: a bad record is logged and skipped, the
// rest of the batch still lands.
func (s *Service) SyncCategory(ctx context.Context, category news.Category) (int, error) {
	started := time.Now()
	articles := s.manager.FetchAll(ctx, category)

	inserted := 0
	for _, article := range articles {
		created, err := s.articles.UpsertArticle(ctx, article)
		if err != nil {
			slog.Warn("Failed to store article", "category", category, "url", article.URL, "error", err)
			continue
		}
		if created {
			inserted++
		}
	}

	s.mu.Lock()
	s.lastSync = time.Now().UTC()
	s.mu.Unlock()

	slog.Info("Category synced", "category", category, "fetched", len(articles),
		"new", inserted, "duration", time.Since(started).Round(time.Millisecond))
	return inserted, nil
}

// SyncAllCategories walks the category list sequentially. Sequential
// on purpose: it bounds concurrent upstream load and keeps log
// ordering stable.
func (s *Service) SyncAllCategories(ctx context.Context) error {
	for _, category := range news.Categories {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := s.SyncCategory(ctx, category); err != nil {
			return fmt.Errorf("sync category %s: %w", category, err)
		}
	}
	return nil
}

// ReindexCategories is currently a full re-sync; it exists as its own
// operation so the daily schedule can diverge from the half-hourly one.
func (s *Service) ReindexCategories(ctx context.Context) error {
	slog.Info("Reindexing all categories")
	return s.SyncAllCategories(ctx)
}

// CleanupOldArticles evicts articles past the retention window and
// drops seen records orphaned by the eviction.
func (s *Service) CleanupOldArticles(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.retention)

	evicted, err := s.articles.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("evict old articles: %w", err)
	}

	orphans, err := s.seen.DeleteOrphaned(ctx)
	if err != nil {
		return fmt.Errorf("clean orphaned seen records: %w", err)
	}

	slog.Info("Cleanup completed", "evicted", evicted, "orphaned_seen", orphans, "cutoff", cutoff.Format(time.RFC3339))
	return nil
}

// ClearArticles drops every stored article. Administrative escape
// hatch, not part of any schedule.
func (s *Service) ClearArticles(ctx context.Context) (int64, error) {
	return s.articles.DeleteAll(ctx)
}

// GetNews serves the read path: rotation pick, one sync-and-retry on a
// cache miss, lazy full-content backfill. Returns zero or one article.
func (s *Service) GetNews(ctx context.Context, category news.Category, userID string) ([]news.Article, error) {
	article, err := s.rotation.GetRandomArticle(ctx, userID, category)
	if err != nil {
		return nil, fmt.Errorf("rotation lookup: %w", err)
	}

	if article == nil {
		// Single retry cache-warm, not a loop.
		slog.Info("No cached articles, syncing on demand", "category", category)
		if _, err := s.SyncCategory(ctx, category); err != nil {
			return nil, fmt.Errorf("on-demand sync: %w", err)
		}
		article, err = s.rotation.GetRandomArticle(ctx, userID, category)
		if err != nil {
			return nil, fmt.Errorf("rotation retry: %w", err)
		}
	}

	if article == nil {
		return []news.Article{}, nil
	}

	if !article.IsFullContent {
		s.backfill(ctx, article)
	}

	return []news.Article{article.Normalized()}, nil
}

// backfill tries to replace the snippet with full page text. Anything
// short of a substantial result keeps the snippet silently.
func (s *Service) backfill(ctx context.Context, article *database.Article) {
	content := s.extractor.FetchFullContent(ctx, article.URL)
	if len(content) <= minBackfillLength {
		slog.Debug("Backfill too short, keeping snippet", "url", article.URL, "length", len(content))
		return
	}

	if err := s.articles.SetFullContent(ctx, article.ID, content); err != nil {
		slog.Warn("Failed to persist backfilled content", "url", article.URL, "error", err)
		return
	}

	article.Content = content
	article.IsFullContent = true
	slog.Info("Article backfilled", "url", article.URL, "length", len(content))
}

// GetArticleCount reports the total number of stored articles.
func (s *Service) GetArticleCount(ctx context.Context) (int, error) {
	return s.articles.GetArticleCount(ctx)
}

// GetStatus reports store counts and registry details for the status
// endpoint.
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	counts, err := s.articles.CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}

	// Every category shows up, zero or not.
	categories := make(map[string]int, len(news.Categories))
	for _, category := range news.Categories {
		categories[string(category)] = counts[string(category)]
	}

	s.mu.Lock()
	lastSync := s.lastSync
	s.mu.Unlock()

	lastSyncStr := "never"
	if !lastSync.IsZero() {
		lastSyncStr = lastSync.Format(time.RFC3339)
	}

	return &Status{
		Status:     "ok",
		Provider:   "aggregated",
		Categories: categories,
		Sources:    s.manager.SourceNames(),
		LastSync:   lastSyncStr,
	}, nil
}
