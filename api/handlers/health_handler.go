package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// ToolProbe reports whether the external tools the backend shells out to are installed
type ToolProbe interface {
	Available() error
	FFmpegPath() string
}

// HealthHandler handles health check requests
type HealthHandler struct {
	probe ToolProbe
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(probe ToolProbe) *HealthHandler {
	return &HealthHandler{
		probe: probe,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	FFmpegAvailable bool   `json:"ffmpeg_available"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:          "ok",
		Version:         Version,
		FFmpegAvailable: h.probe.FFmpegPath() != "",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if err := h.probe.Available(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
