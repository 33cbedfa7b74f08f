package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/ytfetch-go/internal/app"
	"github.com/yourusername/ytfetch-go/internal/domain"
)

// FormatsHandler handles format lookup requests
type FormatsHandler struct {
	service *app.DownloadService
}

// NewFormatsHandler creates a new formats handler
func NewFormatsHandler(service *app.DownloadService) *FormatsHandler {
	return &FormatsHandler{service: service}
}

// FetchFormats handles GET /api/fetch-formats?url=
func (h *FormatsHandler) FetchFormats(c *gin.Context) {
	listing, err := h.service.ListFormats(c.Request.Context(), c.Query("url"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrURLRequired) || errors.Is(err, domain.ErrPlaylistUnsupported) {
			status = http.StatusBadRequest
		}
		c.Error(err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listing)
}
