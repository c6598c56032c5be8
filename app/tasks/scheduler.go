package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/typefeed/typefeed/app/cfg"
	"github.com/typefeed/typefeed/app/news"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type Scheduler struct {
	aggregator      Aggregator
	syncInterval    time.Duration
	cleanupInterval time.Duration
	reindexInterval time.Duration
	workerCount     int
	ctx             context.Context
	cancel          context.CancelFunc
	wg              sync.WaitGroup
	taskQueue       chan TaskInterface
}

func NewScheduler(aggregator Aggregator) TaskSchedulerInterface {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := cfg.Get()

	return &Scheduler{
		aggregator:      aggregator,
		syncInterval:    intervalOr(cfg.SyncInterval, time.Minute, 30*time.Minute),
		cleanupInterval: intervalOr(cfg.CleanupInterval, time.Hour, 6*time.Hour),
		reindexInterval: intervalOr(cfg.ReindexInterval, time.Hour, 24*time.Hour),
		workerCount:     cfg.WorkerCount,
		ctx:             ctx,
		cancel:          cancel,
		taskQueue:       make(chan TaskInterface, 300),
	}
}

// intervalOr converts n units into a duration. A non-positive n falls
// back to the default; tickers panic on non-positive intervals.
func intervalOr(n int, unit, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * unit
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		syncTicker := time.NewTicker(s.syncInterval)
		defer syncTicker.Stop()
		cleanupTicker := time.NewTicker(s.cleanupInterval)
		defer cleanupTicker.Stop()
		reindexTicker := time.NewTicker(s.reindexInterval)
		defer reindexTicker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-syncTicker.C:
				s.enqueueSyncTasks()
			case <-cleanupTicker.C:
				if err := s.EnqueueTask(NewCleanupTask(s.aggregator)); err != nil {
					slog.Warn("Failed to enqueue CleanupTask", "error", err)
				}
			case <-reindexTicker.C:
				if err := s.EnqueueTask(NewReindexTask(s.aggregator)); err != nil {
					slog.Warn("Failed to enqueue ReindexTask", "error", err)
				}
			}
		}
	}()

}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
	close(s.taskQueue)
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return fmt.Errorf("task queue is full")
	}
}

func (s *Scheduler) enqueueSyncTasks() {
	slog.Debug("Scheduling category sync tasks", "count", len(news.Categories))

	for _, category := range news.Categories {
		syncTask := NewSyncCategoryTask(category, s.aggregator)
		if err := s.EnqueueTask(syncTask); err != nil {
			slog.Warn("Failed to enqueue SyncCategoryTask", "category", category, "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task, ok := <-s.taskQueue:
			if !ok {
				return
			}
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, 5*time.Minute)
	defer cancel()

	err := task.Execute(taskCtx)

	if err != nil {
		slog.Error("Worker task execution failed", "worker_id", workerID, "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", err)

		if task.CanRetry() {
			task.IncrementRetryCount()
			retryDelay := time.Duration(1<<uint(task.GetRetryCount()-1)) * time.Second
			if retryDelay > 30*time.Second {
				retryDelay = 30 * time.Second
			}

			slog.Warn("Task retry scheduled", "type", string(task.GetType()), "subject", task.GetSubject(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "delay", retryDelay.String())

			go func() {
				time.Sleep(retryDelay)
				select {
				case <-s.ctx.Done():
					slog.Debug("Scheduler stopped, skipping task retry", "type", string(task.GetType()), "id", task.GetID())
					return
				default:
					if retryErr := s.EnqueueTask(task); retryErr != nil {
						slog.Error("Failed to re-enqueue task for retry", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "error", retryErr)
					}
				}
			}()
		} else {
			slog.Error("Task failed after maximum retries", "type", string(task.GetType()), "id", task.GetID(), "retry_count", task.GetRetryCount(), "max_retries", task.GetMaxRetries(), "last_error", err)
		}
	}
}
