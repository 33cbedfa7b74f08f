package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDownload(t *testing.T) {
	url := "https://www.youtube.com/watch?v=abc"

	download := NewDownload(url, "18")

	assert.NotEmpty(t, download.ID)
	assert.Equal(t, url, download.URL)
	assert.Equal(t, "18", download.FormatID)
	assert.Equal(t, StatusProcessing, download.Status)
	assert.False(t, download.IsTerminal())
}

func TestDownload_MarkCompleted(t *testing.T) {
	download := NewDownload("https://example.com/v", "18")

	download.MarkCompleted("video_20240101_120000.mp4", 1024)

	assert.Equal(t, StatusCompleted, download.Status)
	assert.Equal(t, "video_20240101_120000.mp4", download.FileName)
	assert.Equal(t, int64(1024), download.SizeBytes)
	assert.NotNil(t, download.CompletedAt)
	assert.True(t, download.IsTerminal())
}

func TestDownload_MarkFailed(t *testing.T) {
	download := NewDownload("https://example.com/v", "18")

	download.MarkFailed(errors.New("yt-dlp failed"))

	assert.Equal(t, StatusFailed, download.Status)
	assert.Equal(t, "yt-dlp failed", download.ErrorMessage)
	assert.Nil(t, download.CompletedAt)
	assert.True(t, download.IsTerminal())
}

func TestValidateStatus(t *testing.T) {
	assert.True(t, ValidateStatus(StatusProcessing))
	assert.True(t, ValidateStatus(StatusCompleted))
	assert.True(t, ValidateStatus(StatusFailed))
	assert.False(t, ValidateStatus("queued"))
}

func TestOutcome(t *testing.T) {
	assert.True(t, Succeeded().OK())

	timeout := Failed(OutcomeTimeout, "Download timed out (30 seconds)")
	assert.False(t, timeout.OK())
	assert.Equal(t, "Timed out", timeout.Title())
	assert.Equal(t, "Error", Failed(OutcomeServerError, "boom").Title())
}
