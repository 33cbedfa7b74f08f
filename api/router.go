package api

import (
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/yourusername/ytfetch-go/api/handlers"
	"github.com/yourusername/ytfetch-go/api/middleware"
	"github.com/yourusername/ytfetch-go/internal/app"
	"github.com/yourusername/ytfetch-go/pkg/logger"
	"github.com/yourusername/ytfetch-go/web"
)

// SetupRouter sets up the HTTP router
func SetupRouter(
	service *app.DownloadService,
	probe handlers.ToolProbe,
	multiLogger *logger.MultiLogger,
	limiter *rate.Limiter,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(multiLogger))
	router.Use(middleware.Recovery(multiLogger))
	router.Use(middleware.CORS())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(probe)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	api := router.Group("/api")
	{
		formatsHandler := handlers.NewFormatsHandler(service)
		api.GET("/fetch-formats", formatsHandler.FetchFormats)

		downloadHandler := handlers.NewDownloadHandler(service)
		api.POST("/download", middleware.RateLimit(limiter), downloadHandler.Download)

		historyHandler := handlers.NewHistoryHandler(service)
		history := api.Group("/history")
		{
			history.GET("", historyHandler.ListDownloads)
			history.GET("/stats", historyHandler.GetStats)
		}

		// Log endpoints
		logHandler := handlers.NewLogHandler(multiLogger.GetLogsDir())
		logs := api.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/:category", logHandler.GetLogs)
		}
	}

	// Serve the embedded web page
	staticFS := web.GetStaticFS()

	router.GET("/", func(c *gin.Context) {
		serveFile(c, staticFS, "index.html")
	})
	router.GET("/static/*filepath", func(c *gin.Context) {
		serveFile(c, staticFS, strings.TrimPrefix(path.Clean(c.Param("filepath")), "/"))
	})

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}

// serveFile serves a file from the embedded filesystem with proper content type
func serveFile(c *gin.Context, staticFS fs.FS, filePath string) {
	file, err := staticFS.Open(filePath)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to read file: %v", err)
		return
	}

	// Determine content type based on file extension
	contentType := "application/octet-stream"
	switch path.Ext(filePath) {
	case ".html":
		contentType = "text/html; charset=utf-8"
	case ".css":
		contentType = "text/css; charset=utf-8"
	case ".js":
		contentType = "application/javascript; charset=utf-8"
	case ".json":
		contentType = "application/json; charset=utf-8"
	case ".svg":
		contentType = "image/svg+xml"
	case ".png":
		contentType = "image/png"
	}

	c.Data(http.StatusOK, contentType, content)
}
