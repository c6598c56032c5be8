// Package rotation picks articles for a requesting user, preferring
// ones they have not been served yet.
package rotation

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/typefeed/typefeed/app/database"
	"github.com/typefeed/typefeed/app/news"
)

// DefaultPoolSize bounds the recency window considered per request.
const DefaultPoolSize = 100

const markSeenTimeout = 5 * time.Second

// Service implements the unseen-preferring sampler. It is an
// approximate novelty maximizer, not a no-repeat guarantee: once a
// user has seen the whole candidate pool, repeats are expected.
type Service struct {
	articles database.ArticleRepository
	seen     database.SeenRepository
	poolSize int
}

func NewService(articles database.ArticleRepository, seen database.SeenRepository, poolSize int) *Service {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &Service{
		articles: articles,
		seen:     seen,
		poolSize: poolSize,
	}
}

// GetRandomArticle is the single-article convenience form.
func (s *Service) GetRandomArticle(ctx context.Context, userID string, category news.Category) (*database.Article, error) {
	picked, err := s.GetRandomArticles(ctx, userID, category, 1)
	if err != nil {
		return nil, err
	}
	if len(picked) == 0 {
		return nil, nil
	}
	return &picked[0], nil
}

// GetRandomArticles returns up to limit articles from the category's
// recency-bounded pool. An empty userID means anonymous: plain random
// sampling with no seen tracking. For identified users, unseen
// articles are served first and exposure is recorded asynchronously.
func (s *Service) GetRandomArticles(ctx context.Context, userID string, category news.Category, limit int) ([]database.Article, error) {
	if limit <= 0 {
		return nil, nil
	}

	pool, err := s.articles.GetRecentByCategory(ctx, category, s.poolSize)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	if userID == "" {
		shuffle(pool)
		return pool[:min(limit, len(pool))], nil
	}

	ids := make([]string, len(pool))
	for i, a := range pool {
		ids[i] = a.ID
	}

	seenIDs, err := s.seen.GetSeenIDs(ctx, userID, ids)
	if err != nil {
		// Seen lookup failing shouldn't block serving content.
		slog.Warn("Seen lookup failed, serving without novelty preference", "user", userID, "error", err)
		seenIDs = map[string]bool{}
	}

	var unseen, seen []database.Article
	for _, a := range pool {
		if seenIDs[a.ID] {
			seen = append(seen, a)
		} else {
			unseen = append(unseen, a)
		}
	}

	var picked []database.Article
	if len(unseen) >= limit {
		shuffle(unseen)
		picked = unseen[:limit]
	} else {
		shuffle(seen)
		picked = append(picked, unseen...)
		need := limit - len(picked)
		picked = append(picked, seen[:min(need, len(seen))]...)
	}

	for _, a := range picked {
		s.markSeenAsync(userID, a.ID)
	}

	return picked, nil
}

// markSeenAsync records exposure without blocking the response. Errors
// are swallowed: the user already has their article.
func (s *Service) markSeenAsync(userID, articleID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), markSeenTimeout)
		defer cancel()

		if err := s.seen.MarkSeen(ctx, userID, articleID); err != nil {
			slog.Warn("Failed to record seen article", "user", userID, "article", articleID, "error", err)
		}
	}()
}

func shuffle(articles []database.Article) {
	rand.Shuffle(len(articles), func(i, j int) {
		articles[i], articles[j] = articles[j], articles[i]
	})
}
