package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/yourusername/ytfetch-go/internal/domain"
)

// LogEntry is one line of a backend category log
type LogEntry struct {
	Timestamp string                 `json:"ts"`
	Level     string                 `json:"level"`
	Message   string                 `json:"msg"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

type historyResponse struct {
	Count     int                `json:"count"`
	Downloads []*domain.Download `json:"downloads"`
}

type logsResponse struct {
	Entries []LogEntry `json:"entries"`
}

// History lists backend download records newest first. An empty status
// matches every record; limit <= 0 uses the backend default.
func (c *Client) History(ctx context.Context, status string, limit int) ([]*domain.Download, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var body historyResponse
	if err := c.getJSON(ctx, "/api/history", query, &body); err != nil {
		return nil, err
	}
	return body.Downloads, nil
}

// Stats returns backend download statistics
func (c *Client) Stats(ctx context.Context) (*domain.DownloadStats, error) {
	var stats domain.DownloadStats
	if err := c.getJSON(ctx, "/api/history/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Logs returns the last limit entries of a backend category log.
// An empty date means today; otherwise it must be YYYY-MM-DD.
func (c *Client) Logs(ctx context.Context, category, date string, limit int) ([]LogEntry, error) {
	query := url.Values{}
	if date != "" {
		query.Set("date", date)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var body logsResponse
	if err := c.getJSON(ctx, "/api/logs/"+url.PathEscape(category), query, &body); err != nil {
		return nil, err
	}
	return body.Entries, nil
}

// getJSON issues a GET and decodes a 2xx JSON body into out.
// Non-2xx responses become errors carrying the backend's error field.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		var body struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&body) == nil && body.Error != "" {
			return fmt.Errorf("%s: %s", resp.Status, body.Error)
		}
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
