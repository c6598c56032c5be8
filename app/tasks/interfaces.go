package tasks

import (
	"context"

	"github.com/typefeed/typefeed/app/news"
)

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the main application to manage background task processing.
// Example usage:
//
//	scheduler := NewScheduler(aggregatorSvc)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewSyncCategoryTask(news.CategoryWorld, aggregatorSvc))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// Aggregator is the slice of the aggregation service the background
// tasks drive.
type Aggregator interface {
	SyncCategory(ctx context.Context, category news.Category) (int, error)
	CleanupOldArticles(ctx context.Context) error
	ReindexCategories(ctx context.Context) error
}
