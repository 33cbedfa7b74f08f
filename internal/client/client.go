package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/ytfetch-go/internal/domain"
)

// User-facing messages
const (
	MsgEnterURL           = "Please enter a URL first"
	MsgSelectFormat       = "Please select a format before downloading."
	MsgFetchFormatsFailed = "Failed to fetch formats"
	MsgDownloadFailed     = "Download failed"
)

var errDownloadTimeout = errors.New("download timed out")

// TimeoutMessage is the message surfaced when a download exceeds timeout.
// Whole seconds read as "(30 seconds)"; anything finer keeps its precision.
func TimeoutMessage(timeout time.Duration) string {
	if timeout%time.Second == 0 {
		return fmt.Sprintf("Download timed out (%d seconds)", int(timeout/time.Second))
	}
	return fmt.Sprintf("Download timed out (%s)", timeout)
}

// FormatsResult is the outcome of a format lookup
type FormatsResult struct {
	domain.Outcome
	Formats []domain.Format
}

// DownloadResult is the outcome of a file download
type DownloadResult struct {
	domain.Outcome
	Path     string // where the file was saved
	Filename string
	Size     int64
}

// Client talks to the download backend
type Client struct {
	baseURL    string
	timeout    time.Duration
	outputDir  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a new backend client
func NewClient(config *domain.ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := config.DownloadTimeout
	if timeout <= 0 {
		timeout = domain.DefaultDownloadTimeout
	}
	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	return &Client{
		baseURL:    strings.TrimSuffix(config.BackendURL, "/"),
		timeout:    timeout,
		outputDir:  outputDir,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

type fetchFormatsResponse struct {
	Formats []domain.Format `json:"formats"`
	Error   string          `json:"error"`
}

// FetchFormats looks up the formats available for videoURL.
// An empty videoURL fails validation without any request being sent.
func (c *Client) FetchFormats(ctx context.Context, videoURL string) FormatsResult {
	if videoURL == "" {
		return FormatsResult{Outcome: domain.Failed(domain.OutcomeValidationError, MsgEnterURL)}
	}

	endpoint := c.baseURL + "/api/fetch-formats?url=" + url.QueryEscape(videoURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return FormatsResult{Outcome: domain.Failed(domain.OutcomeNetworkError, err.Error())}
	}

	c.logger.Debug("Fetching formats", zap.String("url", videoURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return FormatsResult{Outcome: domain.Failed(domain.OutcomeNetworkError, err.Error())}
	}
	defer resp.Body.Close()

	var body fetchFormatsResponse
	decodeErr := json.NewDecoder(resp.Body).Decode(&body)

	if !isSuccess(resp.StatusCode) {
		msg := body.Error
		if msg == "" {
			msg = MsgFetchFormatsFailed
		}
		c.logger.Debug("Format lookup rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("error", msg))
		return FormatsResult{Outcome: domain.Failed(domain.OutcomeServerError, msg)}
	}

	if decodeErr != nil {
		return FormatsResult{Outcome: domain.Failed(domain.OutcomeNetworkError,
			fmt.Sprintf("failed to decode formats: %v", decodeErr))}
	}

	c.logger.Debug("Formats fetched", zap.Int("count", len(body.Formats)))
	return FormatsResult{Outcome: domain.Succeeded(), Formats: body.Formats}
}

// Download requests videoURL in formatID and saves the payload into the
// output directory as video.<ext>. The request is abandoned if no response
// arrives within the configured timeout.
func (c *Client) Download(ctx context.Context, videoURL, formatID string) DownloadResult {
	if videoURL == "" || formatID == "" {
		return DownloadResult{Outcome: domain.Failed(domain.OutcomeValidationError, MsgSelectFormat)}
	}

	payload, err := json.Marshal(domain.DownloadRequest{URL: videoURL, FormatID: formatID})
	if err != nil {
		return DownloadResult{Outcome: domain.Failed(domain.OutcomeNetworkError, err.Error())}
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)
	timer := time.AfterFunc(c.timeout, func() { cancel(errDownloadTimeout) })

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/download", bytes.NewReader(payload))
	if err != nil {
		timer.Stop()
		return DownloadResult{Outcome: domain.Failed(domain.OutcomeNetworkError, err.Error())}
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("Requesting download",
		zap.String("url", videoURL),
		zap.String("format_id", formatID),
		zap.Duration("timeout", c.timeout))

	resp, err := c.httpClient.Do(req)
	// Response headers arrived (or the request failed): disarm the deadline.
	timer.Stop()
	if err != nil {
		return DownloadResult{Outcome: c.transportFailure(ctx, err)}
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		body, _ := io.ReadAll(resp.Body)
		msg := string(body)
		if msg == "" {
			msg = MsgDownloadFailed
		}
		c.logger.Debug("Download rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("error", msg))
		return DownloadResult{Outcome: domain.Failed(domain.OutcomeServerError, msg)}
	}

	filename := domain.SavedFilename(formatID)
	path, size, err := c.save(resp.Body, filename)
	if err != nil {
		return DownloadResult{Outcome: c.transportFailure(ctx, err)}
	}

	c.logger.Debug("Download saved",
		zap.String("path", path),
		zap.Int64("size", size))

	return DownloadResult{
		Outcome:  domain.Succeeded(),
		Path:     path,
		Filename: filename,
		Size:     size,
	}
}

// transportFailure tells a fired download deadline apart from other failures
func (c *Client) transportFailure(ctx context.Context, err error) domain.Outcome {
	if errors.Is(context.Cause(ctx), errDownloadTimeout) {
		return domain.Failed(domain.OutcomeTimeout, TimeoutMessage(c.timeout))
	}
	return domain.Failed(domain.OutcomeNetworkError, err.Error())
}

// save streams body into a temporary file next to the destination and then
// renames it into place. The temporary file never outlives this call.
func (c *Client) save(body io.Reader, filename string) (string, int64, error) {
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(c.outputDir, ".ytfetch-*.part")
	if err != nil {
		return "", 0, fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, body)
	if err != nil {
		tmp.Close()
		return "", 0, fmt.Errorf("failed to read download body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("failed to write temporary file: %w", err)
	}

	dest := filepath.Join(c.outputDir, filename)
	if err := os.Rename(tmpPath, dest); err != nil {
		return "", 0, fmt.Errorf("failed to save %s: %w", filename, err)
	}

	return dest, size, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
