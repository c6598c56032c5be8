package tasks

import (
	"context"
	"fmt"
	"log/slog"
)

type ReindexTask struct {
	Task
	aggregator Aggregator
}

func NewReindexTask(aggregator Aggregator) *ReindexTask {
	return &ReindexTask{
		Task:       NewTask(TaskTypeReindex, "all"),
		aggregator: aggregator,
	}
}

func (t *ReindexTask) Execute(ctx context.Context) error {

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := t.aggregator.ReindexCategories(ctx); err != nil {
		return fmt.Errorf("failed to reindex categories: %w", err)
	}

	slog.Debug("Reindex task completed", "duration", t.GetDuration().String())
	return nil
}
