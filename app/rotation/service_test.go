package rotation

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/typefeed/typefeed/app/database"
	"github.com/typefeed/typefeed/app/news"
)

type fakeArticleRepo struct {
	database.ArticleRepository
	articles []database.Article
}

func (f *fakeArticleRepo) GetRecentByCategory(ctx context.Context, category news.Category, limit int) ([]database.Article, error) {
	var out []database.Article
	for _, a := range f.articles {
		if a.Category == category && len(out) < limit {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeSeenRepo struct {
	database.SeenRepository

	mu     sync.Mutex
	seen   map[string]map[string]bool // userID -> articleID
	marked []string
	err    error
}

func newFakeSeenRepo() *fakeSeenRepo {
	return &fakeSeenRepo{seen: make(map[string]map[string]bool)}
}

func (f *fakeSeenRepo) GetSeenIDs(ctx context.Context, userID string, articleIDs []string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]bool)
	for _, id := range articleIDs {
		if f.seen[userID][id] {
			out[id] = true
		}
	}
	return out, nil
}

func (f *fakeSeenRepo) MarkSeen(ctx context.Context, userID, articleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen[userID] == nil {
		f.seen[userID] = make(map[string]bool)
	}
	f.seen[userID][articleID] = true
	f.marked = append(f.marked, articleID)
	return nil
}

func (f *fakeSeenRepo) markedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.marked)
}

func poolOf(n int, category news.Category) []database.Article {
	articles := make([]database.Article, n)
	for i := range articles {
		articles[i] = database.Article{
			ID:       fmt.Sprintf("article-%d", i),
			URL:      fmt.Sprintf("http://x/%d", i),
			Title:    fmt.Sprintf("Story %d", i),
			Category: category,
		}
	}
	return articles
}

func waitForMarks(t *testing.T, repo *fakeSeenRepo, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if repo.markedCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Expected %d seen marks, got %d", want, repo.markedCount())
}

func TestGetRandomArticles_PrefersUnseen(t *testing.T) {
	pool := poolOf(10, news.CategorySports)
	seenRepo := newFakeSeenRepo()

	// User has seen everything except articles 2, 5 and 7.
	unseenIDs := map[string]bool{"article-2": true, "article-5": true, "article-7": true}
	for _, a := range pool {
		if !unseenIDs[a.ID] {
			seenRepo.MarkSeen(context.Background(), "u1", a.ID)
		}
	}
	seenRepo.mu.Lock()
	seenRepo.marked = nil
	seenRepo.mu.Unlock()

	service := NewService(&fakeArticleRepo{articles: pool}, seenRepo, 100)

	picked, err := service.GetRandomArticles(context.Background(), "u1", news.CategorySports, 3)
	if err != nil {
		t.Fatalf("GetRandomArticles failed: %v", err)
	}
	if len(picked) != 3 {
		t.Fatalf("Expected 3 articles, got %d", len(picked))
	}
	for _, a := range picked {
		if !unseenIDs[a.ID] {
			t.Errorf("Expected only unseen articles, got %s", a.ID)
		}
	}

	waitForMarks(t, seenRepo, 3)
}

func TestGetRandomArticles_FallsBackToSeen(t *testing.T) {
	pool := poolOf(10, news.CategorySports)
	seenRepo := newFakeSeenRepo()
	for _, a := range pool {
		seenRepo.MarkSeen(context.Background(), "u1", a.ID)
	}

	service := NewService(&fakeArticleRepo{articles: pool}, seenRepo, 100)

	picked, err := service.GetRandomArticles(context.Background(), "u1", news.CategorySports, 3)
	if err != nil {
		t.Fatalf("GetRandomArticles failed: %v", err)
	}
	if len(picked) != 3 {
		t.Errorf("Expected 3 articles from all-seen pool, got %d", len(picked))
	}
}

func TestGetRandomArticles_MixesUnseenAndSeen(t *testing.T) {
	pool := poolOf(10, news.CategorySports)
	seenRepo := newFakeSeenRepo()

	// Only one article is unseen; asking for 3 should top up from seen.
	for _, a := range pool[1:] {
		seenRepo.MarkSeen(context.Background(), "u1", a.ID)
	}

	service := NewService(&fakeArticleRepo{articles: pool}, seenRepo, 100)

	picked, err := service.GetRandomArticles(context.Background(), "u1", news.CategorySports, 3)
	if err != nil {
		t.Fatalf("GetRandomArticles failed: %v", err)
	}
	if len(picked) != 3 {
		t.Fatalf("Expected 3 articles, got %d", len(picked))
	}

	found := false
	for _, a := range picked {
		if a.ID == "article-0" {
			found = true
		}
	}
	if !found {
		t.Error("Expected the single unseen article to be included")
	}
}

func TestGetRandomArticles_AnonymousSkipsSeenTracking(t *testing.T) {
	pool := poolOf(5, news.CategorySports)
	seenRepo := newFakeSeenRepo()
	service := NewService(&fakeArticleRepo{articles: pool}, seenRepo, 100)

	picked, err := service.GetRandomArticles(context.Background(), "", news.CategorySports, 2)
	if err != nil {
		t.Fatalf("GetRandomArticles failed: %v", err)
	}
	if len(picked) != 2 {
		t.Errorf("Expected 2 articles for guest, got %d", len(picked))
	}

	// Give any stray goroutine a moment, then confirm nothing was marked.
	time.Sleep(50 * time.Millisecond)
	if got := seenRepo.markedCount(); got != 0 {
		t.Errorf("Guest requests must not record exposure, got %d marks", got)
	}
}

func TestGetRandomArticles_EmptyPool(t *testing.T) {
	service := NewService(&fakeArticleRepo{}, newFakeSeenRepo(), 100)

	picked, err := service.GetRandomArticles(context.Background(), "u1", news.CategorySports, 3)
	if err != nil {
		t.Fatalf("GetRandomArticles failed: %v", err)
	}
	if len(picked) != 0 {
		t.Errorf("Expected empty result for empty pool, got %d", len(picked))
	}
}

func TestGetRandomArticles_SeenLookupFailureStillServes(t *testing.T) {
	pool := poolOf(5, news.CategorySports)
	seenRepo := newFakeSeenRepo()
	seenRepo.err = fmt.Errorf("store down")

	service := NewService(&fakeArticleRepo{articles: pool}, seenRepo, 100)

	picked, err := service.GetRandomArticles(context.Background(), "u1", news.CategorySports, 2)
	if err != nil {
		t.Fatalf("Expected degraded service, got error: %v", err)
	}
	if len(picked) != 2 {
		t.Errorf("Expected 2 articles despite seen-lookup failure, got %d", len(picked))
	}
}

func TestGetRandomArticle_SingleForm(t *testing.T) {
	pool := poolOf(5, news.CategorySports)
	service := NewService(&fakeArticleRepo{articles: pool}, newFakeSeenRepo(), 100)

	article, err := service.GetRandomArticle(context.Background(), "", news.CategorySports)
	if err != nil {
		t.Fatalf("GetRandomArticle failed: %v", err)
	}
	if article == nil {
		t.Fatal("Expected one article")
	}

	empty := NewService(&fakeArticleRepo{}, newFakeSeenRepo(), 100)
	article, err = empty.GetRandomArticle(context.Background(), "", news.CategorySports)
	if err != nil {
		t.Fatalf("GetRandomArticle failed: %v", err)
	}
	if article != nil {
		t.Errorf("Expected nil for empty pool, got %+v", article)
	}
}
