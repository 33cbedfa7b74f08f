package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytfetch-go/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestMultiLogger(t *testing.T) (*logger.MultiLogger, string) {
	t.Helper()
	dir := t.TempDir()
	ml, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: dir})
	require.NoError(t, err)
	t.Cleanup(func() { ml.Close() })
	return ml, dir
}

func TestLogger_WritesAccessAndErrorLogs(t *testing.T) {
	ml, dir := newTestMultiLogger(t)
	router := gin.New()
	router.Use(Logger(ml))
	router.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, path := range []string{"/ok?x=1", "/fail"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	require.NoError(t, ml.Sync())

	reader := logger.NewLogReader(dir)
	access, err := reader.ReadLogs(logger.CategoryAccess, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, access, 2)
	assert.Equal(t, "/ok", access[0].Fields["path"])
	assert.Equal(t, "x=1", access[0].Fields["query"])

	errs, err := reader.ReadLogs(logger.CategoryError, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "/fail", errs[0].Fields["path"])
}

func TestRecovery(t *testing.T) {
	ml, dir := newTestMultiLogger(t)
	router := gin.New()
	router.Use(Recovery(ml))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())

	require.NoError(t, ml.Sync())
	errs, err := logger.NewLogReader(dir).ReadLogs(logger.CategoryError, time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "Panic recovered", errs[0].Message)
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.POST("/api/download", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/download", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/download", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Content-Disposition", w.Header().Get("Access-Control-Expose-Headers"))
}

func TestRateLimit(t *testing.T) {
	router := gin.New()
	router.POST("/api/download", RateLimit(NewDownloadLimiter(1, 2)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/download", nil))
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	assert.Nil(t, NewDownloadLimiter(0, 5))

	router := gin.New()
	router.POST("/api/download", RateLimit(nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/download", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
