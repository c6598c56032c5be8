package api

import (
	"context"

	"github.com/typefeed/typefeed/app/aggregator"
	"github.com/typefeed/typefeed/app/news"
	"github.com/typefeed/typefeed/app/tasks"
)

type NewsServiceInterface interface {
	GetNews(ctx context.Context, category news.Category, userID string) ([]news.Article, error)
	GetStatus(ctx context.Context) (*aggregator.Status, error)
	SyncCategory(ctx context.Context, category news.Category) (int, error)
	SyncAllCategories(ctx context.Context) error
	CleanupOldArticles(ctx context.Context) error
	ReindexCategories(ctx context.Context) error
	ClearArticles(ctx context.Context) (int64, error)
	GetArticleCount(ctx context.Context) (int, error)
}

var _ NewsServiceInterface = (*aggregator.Service)(nil)

type Handler struct {
	service   NewsServiceInterface
	scheduler tasks.TaskSchedulerInterface
}
