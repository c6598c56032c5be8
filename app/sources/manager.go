package sources

import (
	"context"
	"log/slog"
	"sync"

	"github.com/typefeed/typefeed/app/news"
)

// Manager fans a category request out across every registered source,
// normalizes and classifies the merged results, and deduplicates them
// by canonical URL. It keeps no cross-request state beyond the source
// registry itself.
type Manager struct {
	mu      sync.RWMutex
	sources []Source
}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) Register(source Source) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sources = append(m.sources, source)
	slog.Info("Source registered", "source", source.Name())
}

// SourceNames returns the names of all registered sources in
// registration order.
func (m *Manager) SourceNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, len(m.sources))
	for i, s := range m.sources {
		names[i] = s.Name()
	}
	return names
}

// FetchAll queries every source in parallel and returns the merged,
// normalized, URL-deduplicated result. Partial success is the normal
// case: a source that comes back empty (or panics, caught here) does
// not affect the others.
func (m *Manager) FetchAll(ctx context.Context, category news.Category) []news.Article {
	m.mu.RLock()
	sources := make([]Source, len(m.sources))
	copy(sources, m.sources)
	m.mu.RUnlock()

	results := make([][]news.RawArticle, len(sources))

	var wg sync.WaitGroup
	for i, source := range sources {
		wg.Add(1)
		go func(i int, source Source) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slog.Error("Source panicked", "source", source.Name(), "panic", r)
				}
			}()
			results[i] = source.Fetch(ctx, category)
		}(i, source)
	}
	wg.Wait()

	var merged []news.Article
	seen := make(map[string]int)

	for _, raws := range results {
		for _, raw := range raws {
			article, ok := normalize(raw, category)
			if !ok {
				continue
			}
			// Last write wins for duplicate URLs; content is
			// near-identical across duplicate listings.
			if idx, dup := seen[article.URL]; dup {
				merged[idx] = article
				continue
			}
			seen[article.URL] = len(merged)
			merged = append(merged, article)
		}
	}

	slog.Debug("Fetch fan-out complete", "category", category, "sources", len(sources), "articles", len(merged))
	return merged
}

func normalize(raw news.RawArticle, requested news.Category) (news.Article, bool) {
	title := news.Clean(raw.Title)
	content := news.Clean(raw.Description)

	if raw.URL == "" || title == "" {
		return news.Article{}, false
	}

	// The requested category is the provisional hint when the source
	// didn't carry its own.
	hint := raw.CategoryHint
	if hint == "" {
		hint = string(requested)
	}

	return news.Article{
		Title:       title,
		Content:     content,
		Source:      raw.Source,
		URL:         raw.URL,
		ImageURL:    raw.ImageURL,
		Category:    news.Classify(title, content, hint),
		PublishedAt: raw.PublishedAt,
	}, true
}
