package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ytfetch-go/internal/app"
	"github.com/yourusername/ytfetch-go/internal/domain"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// HistoryHandler serves the download history
type HistoryHandler struct {
	service *app.DownloadService
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(service *app.DownloadService) *HistoryHandler {
	return &HistoryHandler{service: service}
}

// ListDownloads handles GET /api/history
func (h *HistoryHandler) ListDownloads(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit < 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	downloads, err := h.service.History(domain.DownloadStatus(c.Query("status")), limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(downloads),
		"downloads": downloads,
	})
}

// GetStats handles GET /api/history/stats
func (h *HistoryHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats()
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}
