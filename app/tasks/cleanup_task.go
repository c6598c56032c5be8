package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type CleanupTask struct {
	Task
	aggregator Aggregator
}

func NewCleanupTask(aggregator Aggregator) *CleanupTask {
	return &CleanupTask{
		Task:       NewTask(TaskTypeCleanup, "store"),
		aggregator: aggregator,
	}
}

func (t *CleanupTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.aggregator.CleanupOldArticles(ctx); err != nil {
		return fmt.Errorf("failed to clean up old articles: %w", err)
	}

	slog.Debug("Cleanup task completed", "duration", t.GetDuration().String())
	return nil
}
