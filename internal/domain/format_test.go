package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat_Label(t *testing.T) {
	direct := Format{FormatID: "18", Resolution: "640x360", Ext: "mp4"}
	assert.Equal(t, "640x360 (MP4) - Direct download", direct.Label())

	merged := Format{FormatID: "137", Resolution: "1920x1080", Ext: "webm", RequiresFFmpeg: true}
	assert.Equal(t, "1920x1080 (WEBM) - Needs FFmpeg", merged.Label())
}

func TestSavedFilename(t *testing.T) {
	tests := []struct {
		formatID string
		expected string
	}{
		{"bestvideo/webm", "video.webm"},
		{"a/b/mkv", "video.mkv"},
		{"bestvideo/", "video.mp4"},
		{"18", "video.18"},
		{"/", "video.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.formatID, func(t *testing.T) {
			assert.Equal(t, tt.expected, SavedFilename(tt.formatID))
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "video_20240101_120000.mp4", SanitizeFilename("video_20240101_120000.mp4"))
	assert.Equal(t, "abcdefghi.mp4", SanitizeFilename(`a<b>c:d"e/f\g|h?i*.mp4`))
}
