package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrPlaylistUnsupported is returned when a lookup URL resolves to a playlist
	ErrPlaylistUnsupported = errors.New("Playlists are not supported")

	// ErrURLRequired is returned when a format lookup has no URL
	ErrURLRequired = errors.New("URL parameter is required")

	// ErrDownloadParamsRequired is returned when a download lacks a URL or format id
	ErrDownloadParamsRequired = errors.New("URL and format_id are required")

	// ErrInvalidStatus is returned for an unknown history status filter
	ErrInvalidStatus = errors.New("invalid status")
)

// DefaultExtension is used when neither the backend nor the format id names one
const DefaultExtension = "mp4"

// Format describes one downloadable rendition reported by the backend
type Format struct {
	FormatID       string `json:"format_id"`
	Resolution     string `json:"resolution"`
	Ext            string `json:"ext"`
	RequiresFFmpeg bool   `json:"requires_ffmpeg"`
}

// Label renders the text shown for this format in a selection control
func (f Format) Label() string {
	note := "Direct download"
	if f.RequiresFFmpeg {
		note = "Needs FFmpeg"
	}
	return fmt.Sprintf("%s (%s) - %s", f.Resolution, strings.ToUpper(f.Ext), note)
}

// FormatListing is the body of a successful format lookup
type FormatListing struct {
	Formats         []Format `json:"formats"`
	FFmpegAvailable bool     `json:"ffmpeg_available"`
}

// DownloadRequest is the body of a download call
type DownloadRequest struct {
	URL      string `json:"url"`
	FormatID string `json:"format_id"`
}

// SavedFilename returns the local filename for a download of formatID:
// "video." followed by whatever comes after the last '/', or mp4 when that is empty.
func SavedFilename(formatID string) string {
	ext := formatID
	if idx := strings.LastIndex(formatID, "/"); idx >= 0 {
		ext = formatID[idx+1:]
	}
	if ext == "" {
		ext = DefaultExtension
	}
	return "video." + ext
}

var invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*]`)

// SanitizeFilename strips characters that are invalid in filenames on common platforms
func SanitizeFilename(name string) string {
	return invalidFilenameChars.ReplaceAllString(name, "")
}
