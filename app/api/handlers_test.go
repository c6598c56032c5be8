package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/typefeed/typefeed/app/aggregator"
	"github.com/typefeed/typefeed/app/news"
	"github.com/typefeed/typefeed/app/tasks"
)

type stubService struct {
	articles []news.Article
	newsErr  error
	cleared  int64
}

func (s *stubService) GetNews(_ context.Context, category news.Category, _ string) ([]news.Article, error) {
	if s.newsErr != nil {
		return nil, s.newsErr
	}
	return s.articles, nil
}

func (s *stubService) GetStatus(_ context.Context) (*aggregator.Status, error) {
	return &aggregator.Status{
		Status:     "ok",
		Provider:   "aggregated",
		Categories: map[string]int{"technology": 2},
		Sources:    []string{"stub"},
		LastSync:   "never",
	}, nil
}

func (s *stubService) SyncCategory(_ context.Context, _ news.Category) (int, error) {
	return 0, nil
}

func (s *stubService) SyncAllCategories(_ context.Context) error { return nil }

func (s *stubService) CleanupOldArticles(_ context.Context) error { return nil }

func (s *stubService) ReindexCategories(_ context.Context) error { return nil }

func (s *stubService) ClearArticles(_ context.Context) (int64, error) {
	return s.cleared, nil
}

func (s *stubService) GetArticleCount(_ context.Context) (int, error) {
	return len(s.articles), nil
}

type stubScheduler struct {
	enqueued []tasks.TaskInterface
	err      error
}

func (s *stubScheduler) Start() {}

func (s *stubScheduler) Stop() {}

func (s *stubScheduler) EnqueueTask(task tasks.TaskInterface) error {
	if s.err != nil {
		return s.err
	}
	s.enqueued = append(s.enqueued, task)
	return nil
}

func newTestServer(service NewsServiceInterface, scheduler tasks.TaskSchedulerInterface, apiKey string) http.Handler {
	return NewServer(NewHandler(service, scheduler), apiKey)
}

func doRequest(t *testing.T, server http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	w := httptest.NewRecorder()
	server.ServeHTTP(w, req)
	return w
}

func TestGetNews(t *testing.T) {
	service := &stubService{articles: []news.Article{{
		Title:       "A headline about processors",
		Content:     "Body",
		Source:      "Stub",
		URL:         "https://example.com/a",
		Category:    news.CategoryTechnology,
		PublishedAt: time.Now(),
	}}}
	server := newTestServer(service, &stubScheduler{}, "")

	w := doRequest(t, server, http.MethodGet, "/news/technology?user=u1", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Category string         `json:"category"`
		Articles []news.Article `json:"articles"`
		Count    int            `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if body.Category != "technology" || body.Count != 1 || len(body.Articles) != 1 {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestGetNewsRejectsUnknownCategory(t *testing.T) {
	server := newTestServer(&stubService{}, &stubScheduler{}, "")

	w := doRequest(t, server, http.MethodGet, "/news/gossip", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGetNewsServiceError(t *testing.T) {
	service := &stubService{newsErr: errors.New("store broken")}
	server := newTestServer(service, &stubScheduler{}, "")

	w := doRequest(t, server, http.MethodGet, "/news/world", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestGetStatusAndHealth(t *testing.T) {
	server := newTestServer(&stubService{}, &stubScheduler{}, "")

	w := doRequest(t, server, http.MethodGet, "/status", nil)
	if w.Code != http.StatusOK {
		t.Errorf("status endpoint = %d, want 200", w.Code)
	}

	w = doRequest(t, server, http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health endpoint = %d, want 200", w.Code)
	}
}

func TestAdminEndpointsRequireKey(t *testing.T) {
	server := newTestServer(&stubService{}, &stubScheduler{}, "secret")

	w := doRequest(t, server, http.MethodPost, "/api/sync", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing key status = %d, want 401", w.Code)
	}

	w = doRequest(t, server, http.MethodPost, "/api/sync", map[string]string{"X-API-Key": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", w.Code)
	}
}

func TestAdminEndpointsDisabledWithoutKey(t *testing.T) {
	server := newTestServer(&stubService{}, &stubScheduler{}, "")

	w := doRequest(t, server, http.MethodPost, "/api/sync", map[string]string{"X-API-Key": "anything"})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when admin API is disabled", w.Code)
	}
}

func TestAPISyncAllEnqueuesEveryCategory(t *testing.T) {
	scheduler := &stubScheduler{}
	server := newTestServer(&stubService{}, scheduler, "secret")

	w := doRequest(t, server, http.MethodPost, "/api/sync", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if len(scheduler.enqueued) != len(news.Categories) {
		t.Errorf("enqueued %d tasks, want %d", len(scheduler.enqueued), len(news.Categories))
	}
}

func TestAPISyncCategory(t *testing.T) {
	scheduler := &stubScheduler{}
	server := newTestServer(&stubService{}, scheduler, "secret")

	w := doRequest(t, server, http.MethodPost, "/api/sync/sports", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if len(scheduler.enqueued) != 1 {
		t.Fatalf("enqueued %d tasks, want 1", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetType() != tasks.TaskTypeSyncCategory {
		t.Errorf("task type = %q, want sync_category", scheduler.enqueued[0].GetType())
	}

	w = doRequest(t, server, http.MethodPost, "/api/sync/gossip", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown category status = %d, want 400", w.Code)
	}
}

func TestAPISyncFailsWhenQueueFull(t *testing.T) {
	scheduler := &stubScheduler{err: errors.New("task queue is full")}
	server := newTestServer(&stubService{}, scheduler, "secret")

	w := doRequest(t, server, http.MethodPost, "/api/sync/world", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestAPICleanupAndReindex(t *testing.T) {
	scheduler := &stubScheduler{}
	server := newTestServer(&stubService{}, scheduler, "secret")
	auth := map[string]string{"X-API-Key": "secret"}

	w := doRequest(t, server, http.MethodPost, "/api/cleanup", auth)
	if w.Code != http.StatusAccepted {
		t.Errorf("cleanup status = %d, want 202", w.Code)
	}

	w = doRequest(t, server, http.MethodPost, "/api/reindex", auth)
	if w.Code != http.StatusAccepted {
		t.Errorf("reindex status = %d, want 202", w.Code)
	}

	if len(scheduler.enqueued) != 2 {
		t.Fatalf("enqueued %d tasks, want 2", len(scheduler.enqueued))
	}
	if scheduler.enqueued[0].GetType() != tasks.TaskTypeCleanup {
		t.Errorf("first task type = %q, want cleanup", scheduler.enqueued[0].GetType())
	}
	if scheduler.enqueued[1].GetType() != tasks.TaskTypeReindex {
		t.Errorf("second task type = %q, want reindex", scheduler.enqueued[1].GetType())
	}
}

func TestAPIClearArticles(t *testing.T) {
	service := &stubService{cleared: 7}
	server := newTestServer(service, &stubScheduler{}, "secret")

	w := doRequest(t, server, http.MethodDelete, "/api/articles", map[string]string{"X-API-Key": "secret"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Success bool  `json:"success"`
		Deleted int64 `json:"deleted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	if !body.Success || body.Deleted != 7 {
		t.Errorf("unexpected response: %+v", body)
	}
}

func TestBearerTokenAuth(t *testing.T) {
	scheduler := &stubScheduler{}
	server := newTestServer(&stubService{}, scheduler, "secret")

	w := doRequest(t, server, http.MethodPost, "/api/cleanup", map[string]string{"Authorization": "Bearer secret"})
	if w.Code != http.StatusAccepted {
		t.Errorf("status = %d, want 202 with bearer auth", w.Code)
	}
}
