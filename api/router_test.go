package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/ytfetch-go/api/middleware"
	"github.com/yourusername/ytfetch-go/internal/app"
	"github.com/yourusername/ytfetch-go/internal/domain"
	"github.com/yourusername/ytfetch-go/internal/infrastructure"
	"github.com/yourusername/ytfetch-go/pkg/logger"
)

// fakeExtractor writes a small file into workDir for every fetch
type fakeExtractor struct {
	workDir string
	listing *domain.FormatListing
	err     error
}

func (f *fakeExtractor) ListFormats(ctx context.Context, url string) (*domain.FormatListing, error) {
	return f.listing, f.err
}

func (f *fakeExtractor) Fetch(ctx context.Context, url, formatID string) (*domain.FetchedFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	path := filepath.Join(f.workDir, "video_20240101_120000_abcd1234.mp4")
	if err := os.WriteFile(path, []byte("fake video bytes"), 0644); err != nil {
		return nil, err
	}
	return &domain.FetchedFile{Path: path, Name: filepath.Base(path), Size: 16}, nil
}

type fakeProbe struct {
	err    error
	ffmpeg string
}

func (p fakeProbe) Available() error   { return p.err }
func (p fakeProbe) FFmpegPath() string { return p.ffmpeg }

type testServer struct {
	router    http.Handler
	extractor *fakeExtractor
	service   *app.DownloadService
}

func setupTestServer(t *testing.T, probe fakeProbe, ratePerMinute int) *testServer {
	t.Helper()
	tmpDir := t.TempDir()

	repo, err := infrastructure.NewSQLiteDownloadRepository(filepath.Join(tmpDir, "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	ml, err := logger.NewMultiLogger(logger.MultiLoggerConfig{Level: "info", LogsDir: filepath.Join(tmpDir, "logs")})
	require.NoError(t, err)
	t.Cleanup(func() { ml.Close() })

	extractor := &fakeExtractor{
		workDir: tmpDir,
		listing: &domain.FormatListing{
			Formats: []domain.Format{
				{FormatID: "18", Resolution: "640x360", Ext: "mp4"},
				{FormatID: "137", Resolution: "1920x1080", Ext: "mp4", RequiresFFmpeg: true},
			},
			FFmpegAvailable: true,
		},
	}
	service := app.NewDownloadService(extractor, repo, ml.Download())
	router := SetupRouter(service, probe, ml, middleware.NewDownloadLimiter(ratePerMinute, 1))

	return &testServer{router: router, extractor: extractor, service: service}
}

func (s *testServer) do(method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func downloadBody(url, formatID string) []byte {
	data, _ := json.Marshal(domain.DownloadRequest{URL: url, FormatID: formatID})
	return data
}

func TestAPI_FetchFormats(t *testing.T) {
	s := setupTestServer(t, fakeProbe{}, 0)

	w := s.do(http.MethodGet, "/api/fetch-formats?url=https%3A%2F%2Fexample.com%2Fv", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var listing domain.FormatListing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	assert.Equal(t, s.extractor.listing.Formats, listing.Formats)
	assert.True(t, listing.FFmpegAvailable)
}

func TestAPI_FetchFormats_Errors(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing url", "/api/fetch-formats", nil, http.StatusBadRequest, "URL parameter is required"},
		{"playlist", "/api/fetch-formats?url=x", domain.ErrPlaylistUnsupported, http.StatusBadRequest, "Playlists are not supported"},
		{"extractor failure", "/api/fetch-formats?url=x", errors.New("ERROR: Unsupported URL"), http.StatusInternalServerError, "ERROR: Unsupported URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, fakeProbe{}, 0)
			s.extractor.err = tt.err

			w := s.do(http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, w.Body.String())
		})
	}
}

func TestAPI_Download(t *testing.T) {
	s := setupTestServer(t, fakeProbe{}, 0)

	w := s.do(http.MethodPost, "/api/download", downloadBody("https://example.com/v", "18"))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "fake video bytes", w.Body.String())
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="video_20240101_120000_abcd1234.mp4"`)

	// Served files do not accumulate in the work directory
	_, err := os.Stat(filepath.Join(s.extractor.workDir, "video_20240101_120000_abcd1234.mp4"))
	assert.True(t, os.IsNotExist(err))

	history, err := s.service.History(domain.StatusCompleted, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "18", history[0].FormatID)
}

func TestAPI_Download_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       []byte
		err        error
		wantStatus int
		wantError  string
	}{
		{"not json", []byte("url=x"), nil, http.StatusBadRequest, "URL and format_id are required"},
		{"missing format", downloadBody("https://example.com/v", ""), nil, http.StatusBadRequest, "URL and format_id are required"},
		{"ffmpeg missing", downloadBody("https://example.com/v", "137+140"), errors.New("ffmpeg not found"), http.StatusInternalServerError,
			"ffmpeg not found. Please install FFmpeg and add it to your PATH."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := setupTestServer(t, fakeProbe{}, 0)
			s.extractor.err = tt.err

			w := s.do(http.MethodPost, "/api/download", tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.wantError+`"}`, w.Body.String())
		})
	}
}

func TestAPI_Download_RateLimited(t *testing.T) {
	s := setupTestServer(t, fakeProbe{}, 1)

	first := s.do(http.MethodPost, "/api/download", downloadBody("https://example.com/v", "18"))
	second := s.do(http.MethodPost, "/api/download", downloadBody("https://example.com/v", "18"))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestAPI_HistoryAndStats(t *testing.T) {
	s := setupTestServer(t, fakeProbe{}, 0)
	s.do(http.MethodPost, "/api/download", downloadBody("https://example.com/1", "18"))
	s.extractor.err = errors.New("ERROR: boom")
	s.do(http.MethodPost, "/api/download", downloadBody("https://example.com/2", "22"))

	w := s.do(http.MethodGet, "/api/history?status=failed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Count     int                `json:"count"`
		Downloads []*domain.Download `json:"downloads"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	require.Equal(t, 1, history.Count)
	assert.Equal(t, "https://example.com/2", history.Downloads[0].URL)
	assert.Equal(t, "ERROR: boom", history.Downloads[0].ErrorMessage)

	w = s.do(http.MethodGet, "/api/history?status=queued", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/history/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats domain.DownloadStats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, domain.DownloadStats{Total: 2, Completed: 1, Failed: 1}, stats)
}

func TestAPI_Health(t *testing.T) {
	s := setupTestServer(t, fakeProbe{ffmpeg: "/usr/bin/ffmpeg"}, 0)

	w := s.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","version":"1.0.0","ffmpeg_available":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/ready", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_NotReadyWithoutYTDLP(t *testing.T) {
	s := setupTestServer(t, fakeProbe{err: errors.New("yt-dlp not found")}, 0)

	w := s.do(http.MethodGet, "/ready", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "yt-dlp not found")
}

func TestAPI_Logs(t *testing.T) {
	s := setupTestServer(t, fakeProbe{}, 0)
	s.do(http.MethodGet, "/health", nil)

	w := s.do(http.MethodGet, "/api/logs/access?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var logs struct {
		Category string            `json:"category"`
		Entries  []logger.LogEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
	assert.Equal(t, "access", logs.Category)
	require.NotEmpty(t, logs.Entries)
	assert.Equal(t, "/health", logs.Entries[0].Fields["path"])

	w = s.do(http.MethodGet, "/api/logs/queue", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/logs/access?date=20240101", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/logs/categories", nil)
	assert.JSONEq(t, `{"categories":["access","download","error"]}`, w.Body.String())
}

func TestAPI_LogsNonPositiveLimitUsesDefault(t *testing.T) {
	s := setupTestServer(t, fakeProbe{}, 0)
	for i := 0; i < 105; i++ {
		s.do(http.MethodGet, "/health", nil)
	}

	for _, limit := range []string{"0", "-3", "abc"} {
		w := s.do(http.MethodGet, "/api/logs/access?limit="+limit, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var logs struct {
			Count int `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &logs))
		assert.Equal(t, 100, logs.Count, "limit=%s", limit)
	}
}

func TestAPI_WebPage(t *testing.T) {
	s := setupTestServer(t, fakeProbe{}, 0)

	w := s.do(http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.True(t, strings.Contains(w.Body.String(), `id="fetch-formats"`))

	w = s.do(http.MethodGet, "/static/script.js", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/fetch-formats")

	w = s.do(http.MethodGet, "/static/missing.js", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
