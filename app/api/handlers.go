package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/typefeed/typefeed/app/news"
	"github.com/typefeed/typefeed/app/tasks"
)

func NewHandler(service NewsServiceInterface, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		service:   service,
		scheduler: scheduler,
	}
}

// GetNews serves one rotated article for the requested category. The
// optional user query parameter enables per-user rotation; without it
// the pick is anonymous.
func (h *Handler) GetNews(c *gin.Context) {
	category, ok := news.ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Unknown category",
			"categories": news.Categories,
		})
		return
	}

	userID := c.Query("user")

	articles, err := h.service.GetNews(c.Request.Context(), category, userID)
	if err != nil {
		slog.Error("Failed to get news", "category", category, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get news"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"articles": articles,
		"count":    len(articles),
	})
}

func (h *Handler) GetStatus(c *gin.Context) {
	status, err := h.service.GetStatus(c.Request.Context())
	if err != nil {
		slog.Error("Failed to get status", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.service.GetArticleCount(c.Request.Context()); err == nil {
		health["articles"] = count
	}

	c.JSON(http.StatusOK, health)
}

// APISyncAll enqueues a sync task for every category rather than
// syncing inline, so the HTTP response never waits on upstreams.
func (h *Handler) APISyncAll(c *gin.Context) {
	enqueued := make([]gin.H, 0, len(news.Categories))

	for _, category := range news.Categories {
		task := tasks.NewSyncCategoryTask(category, h.service)
		if err := h.scheduler.EnqueueTask(task); err != nil {
			slog.Error("Error enqueueing sync task", "category", category, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to enqueue sync task",
				"details": err.Error(),
			})
			return
		}
		enqueued = append(enqueued, gin.H{"id": task.ID, "type": task.Type, "category": category})
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Sync tasks enqueued successfully",
		"tasks":   enqueued,
	})
}

func (h *Handler) APISyncCategory(c *gin.Context) {
	category, ok := news.ParseCategory(c.Param("category"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":      "Unknown category",
			"categories": news.Categories,
		})
		return
	}

	task := tasks.NewSyncCategoryTask(category, h.service)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing sync task", "category", category, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue sync task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Sync task enqueued successfully",
		"task":    gin.H{"id": task.ID, "type": task.Type, "category": category},
	})
}

func (h *Handler) APICleanup(c *gin.Context) {
	task := tasks.NewCleanupTask(h.service)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing cleanup task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue cleanup task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Cleanup task enqueued successfully",
		"task":    gin.H{"id": task.ID, "type": task.Type},
	})
}

func (h *Handler) APIReindex(c *gin.Context) {
	task := tasks.NewReindexTask(h.service)
	if err := h.scheduler.EnqueueTask(task); err != nil {
		slog.Error("Error enqueueing reindex task", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to enqueue reindex task",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"success": true,
		"message": "Reindex task enqueued successfully",
		"task":    gin.H{"id": task.ID, "type": task.Type},
	})
}

// APIClearArticles drops the whole store synchronously. Destructive,
// admin-only.
func (h *Handler) APIClearArticles(c *gin.Context) {
	deleted, err := h.service.ClearArticles(c.Request.Context())
	if err != nil {
		slog.Error("Failed to clear articles", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear articles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"deleted": deleted,
	})
}
