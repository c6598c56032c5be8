package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/typefeed/typefeed/app/news"
)

type SyncCategoryTask struct {
	Task
	Category   news.Category
	aggregator Aggregator
}

func NewSyncCategoryTask(category news.Category, aggregator Aggregator) *SyncCategoryTask {
	return &SyncCategoryTask{
		Task:       NewTask(TaskTypeSyncCategory, string(category)),
		Category:   category,
		aggregator: aggregator,
	}
}

func (t *SyncCategoryTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	inserted, err := t.aggregator.SyncCategory(ctx, t.Category)
	if err != nil {
		return fmt.Errorf("failed to sync category %s: %w", t.Category, err)
	}

	slog.Debug("Sync task completed", "category", t.Category, "new", inserted, "duration", t.GetDuration().String())
	return nil
}
