package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ytfetch-go/internal/app"
	"github.com/yourusername/ytfetch-go/internal/domain"
)

// DownloadHandler handles download-related HTTP requests
type DownloadHandler struct {
	service *app.DownloadService
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(service *app.DownloadService) *DownloadHandler {
	return &DownloadHandler{service: service}
}

// Download handles POST /api/download
func (h *DownloadHandler) Download(c *gin.Context) {
	var req domain.DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrDownloadParamsRequired.Error()})
		return
	}

	file, err := h.service.Download(c.Request.Context(), req.URL, req.FormatID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrDownloadParamsRequired) {
			status = http.StatusBadRequest
		}
		c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	defer h.service.Release(file)

	// ServeFile keeps an explicit Content-Type
	c.Header("Content-Type", "video/mp4")
	c.FileAttachment(file.Path, file.Name)
}
