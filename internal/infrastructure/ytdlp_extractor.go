package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/ytfetch-go/internal/domain"
	"github.com/yourusername/ytfetch-go/pkg/logger"
)

// ytdlpInfo is the subset of `yt-dlp --dump-single-json` output we read
type ytdlpInfo struct {
	Type    string            `json:"_type"`
	Entries []json.RawMessage `json:"entries"`
	Formats []ytdlpFormat     `json:"formats"`
}

type ytdlpFormat struct {
	FormatID string `json:"format_id"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Ext      string `json:"ext"`
	VCodec   string `json:"vcodec"`
	ACodec   string `json:"acodec"`
}

// isPlaylist reports whether the info describes a playlist rather than a single video
func (i *ytdlpInfo) isPlaylist() bool {
	return i.Type == "playlist" || i.Entries != nil
}

// YTDLPExtractor implements domain.FormatExtractor by running yt-dlp
type YTDLPExtractor struct {
	config      *domain.DownloadConfig
	eventLogger *logger.MultiLogger // optional
}

// NewYTDLPExtractor creates a new yt-dlp backed extractor
func NewYTDLPExtractor(config *domain.DownloadConfig, eventLogger *logger.MultiLogger) *YTDLPExtractor {
	return &YTDLPExtractor{
		config:      config,
		eventLogger: eventLogger,
	}
}

// FFmpegPath returns the first ffmpeg binary found, or "" when none is installed
func (e *YTDLPExtractor) FFmpegPath() string {
	for _, p := range e.config.FFmpegPaths {
		if p != "" && fileExists(p) {
			return p
		}
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p
	}
	return ""
}

// Available checks that the yt-dlp binary can be found
func (e *YTDLPExtractor) Available() error {
	if _, err := exec.LookPath(e.config.YTDLPBinary); err != nil {
		return fmt.Errorf("yt-dlp not found: %w", err)
	}
	return nil
}

// ListFormats lists the formats of a single video
func (e *YTDLPExtractor) ListFormats(ctx context.Context, url string) (*domain.FormatListing, error) {
	args := []string{
		"--dump-single-json",
		"--flat-playlist",
		"--no-warnings",
		url,
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	e.logEvent("format_lookup_started",
		zap.String("url", url),
		zap.String("cmd", ShellEscapeCommand(e.config.YTDLPBinary, args...)))

	if err := cmd.Run(); err != nil {
		return nil, commandError(err, stderr.String())
	}

	var info ytdlpInfo
	if err := json.Unmarshal(stdout.Bytes(), &info); err != nil {
		return nil, fmt.Errorf("failed to parse yt-dlp output: %w", err)
	}

	if info.isPlaylist() {
		return nil, domain.ErrPlaylistUnsupported
	}

	ffmpegAvailable := e.FFmpegPath() != ""
	formats := selectFormats(info.Formats, ffmpegAvailable)

	e.logEvent("format_lookup_completed",
		zap.String("url", url),
		zap.Int("raw_formats", len(info.Formats)),
		zap.Int("formats", len(formats)),
		zap.Bool("ffmpeg_available", ffmpegAvailable))

	return &domain.FormatListing{
		Formats:         formats,
		FFmpegAvailable: ffmpegAvailable,
	}, nil
}

// selectFormats keeps muxed formats, plus video-only or audio-only formats
// when ffmpeg can merge them, and drops repeats of the same resolution and
// extension. Input order is preserved.
func selectFormats(raw []ytdlpFormat, ffmpegAvailable bool) []domain.Format {
	type key struct{ resolution, ext string }
	seen := make(map[key]bool)
	formats := make([]domain.Format, 0, len(raw))

	for _, f := range raw {
		muxed := f.VCodec != "none" && f.ACodec != "none"
		if !muxed && !ffmpegAvailable {
			continue
		}

		ext := f.Ext
		if ext == "" {
			ext = domain.DefaultExtension
		}
		resolution := fmt.Sprintf("%dx%d", f.Width, f.Height)

		k := key{resolution, ext}
		if seen[k] {
			continue
		}
		seen[k] = true

		formats = append(formats, domain.Format{
			FormatID:       f.FormatID,
			Resolution:     resolution,
			Ext:            ext,
			RequiresFFmpeg: !muxed,
		})
	}

	return formats
}

// Fetch downloads url in formatID into the work directory
func (e *YTDLPExtractor) Fetch(ctx context.Context, url, formatID string) (*domain.FetchedFile, error) {
	if err := os.MkdirAll(e.config.WorkDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	// Unique per request so concurrent downloads never share a name.
	base := fmt.Sprintf("video_%s_%s", time.Now().Format("20060102_150405"), uuid.New().String()[:8])
	outTemplate := filepath.Join(e.config.WorkDir, base+".%(ext)s")

	args := e.buildFetchArgs(url, formatID, outTemplate)

	downloadLog, err := e.openLogFile()
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer downloadLog.Close()

	writeLogHeader(downloadLog, base, ShellEscapeCommand(e.config.YTDLPBinary, args...))

	// stdout carries the final path (--print); everything else goes to the log
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.config.YTDLPBinary, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = io.MultiWriter(downloadLog, &stderr)

	if err := cmd.Run(); err != nil {
		cmdErr := commandError(err, stderr.String())
		writeLogFooter(downloadLog, false, cmdErr.Error())
		return nil, cmdErr
	}

	path, err := e.locateOutput(stdout.String(), base)
	if err != nil {
		writeLogFooter(downloadLog, false, err.Error())
		return nil, err
	}

	name := domain.SanitizeFilename(filepath.Base(path))
	finalPath := filepath.Join(e.config.WorkDir, name)
	if finalPath != path {
		if err := os.Rename(path, finalPath); err != nil {
			writeLogFooter(downloadLog, false, err.Error())
			return nil, fmt.Errorf("failed to rename downloaded file: %w", err)
		}
	}

	info, err := os.Stat(finalPath)
	if err != nil {
		writeLogFooter(downloadLog, false, err.Error())
		return nil, fmt.Errorf("downloaded file not found at %s: %w", finalPath, err)
	}

	writeLogFooter(downloadLog, true, fmt.Sprintf("Downloaded: %s", finalPath))
	e.logEvent("download_completed",
		zap.String("url", url),
		zap.String("format_id", formatID),
		zap.String("file", name),
		zap.Int64("size", info.Size()))

	return &domain.FetchedFile{
		Path: finalPath,
		Name: name,
		Size: info.Size(),
	}, nil
}

// buildFetchArgs builds the yt-dlp arguments for a download.
// exec.Command passes args directly to the process, no shell quoting needed.
func (e *YTDLPExtractor) buildFetchArgs(url, formatID, outTemplate string) []string {
	args := []string{
		"-f", formatID,
		"-o", outTemplate,
		"--no-warnings",
		"--no-playlist",
		"--restrict-filenames",
		"--windows-filenames",
		"--no-simulate",
		"--print", "after_move:filepath",
	}

	if e.config.MergeOutputFormat != "" {
		args = append(args, "--merge-output-format", e.config.MergeOutputFormat)
	}

	if ffmpeg := e.FFmpegPath(); ffmpeg != "" {
		args = append(args, "--ffmpeg-location", ffmpeg)
	}

	return append(args, url)
}

// locateOutput finds the file yt-dlp produced, preferring the printed path
func (e *YTDLPExtractor) locateOutput(printed, base string) (string, error) {
	lines := strings.Split(strings.TrimSpace(printed), "\n")
	if last := strings.TrimSpace(lines[len(lines)-1]); last != "" && fileExists(last) {
		return last, nil
	}

	matches, err := filepath.Glob(filepath.Join(e.config.WorkDir, base+".*"))
	if err != nil {
		return "", fmt.Errorf("failed to search work directory: %w", err)
	}
	for _, m := range matches {
		if isMediaFile(m) {
			return m, nil
		}
	}

	return "", fmt.Errorf("downloaded file not found for %s", base)
}

// openLogFile opens the download log file for today
func (e *YTDLPExtractor) openLogFile() (*os.File, error) {
	if err := os.MkdirAll(e.config.LogsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	dateStr := time.Now().Format("20060102")
	downloadPath := filepath.Join(e.config.LogsDir, "ytdlp-"+dateStr+".log")
	return os.OpenFile(downloadPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
}

func (e *YTDLPExtractor) logEvent(event string, fields ...zap.Field) {
	if e.eventLogger != nil {
		e.eventLogger.LogDownloadEvent(event, fields...)
	}
}

// writeLogHeader writes the download start marker
func writeLogHeader(file *os.File, name, cmdLine string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(file, "\n=== [%s] Download: %s ===\n", timestamp, name)
	fmt.Fprintf(file, "$ %s\n", cmdLine)
}

// writeLogFooter writes the download end marker
func writeLogFooter(file *os.File, success bool, message string) {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	status := "SUCCESS"
	if !success {
		status = "FAILED"
	}
	fmt.Fprintf(file, "[%s] %s: %s\n", timestamp, status, message)
	file.WriteString("=== END ===\n\n")
}

// commandError turns a failed yt-dlp run into an error carrying its last stderr line
func commandError(err error, stderr string) error {
	lines := strings.Split(strings.TrimSpace(stderr), "\n")
	if msg := strings.TrimSpace(lines[len(lines)-1]); msg != "" {
		return errors.New(msg)
	}
	return fmt.Errorf("yt-dlp failed: %w", err)
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// isMediaFile checks if a file is a media file (excluding .info.json metadata files)
func isMediaFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	mediaExts := []string{".mp4", ".mkv", ".avi", ".mov", ".webm", ".m4v", ".m4a", ".mp3", ".opus", ".ogg", ".flv", ".3gp"}
	for _, mediaExt := range mediaExts {
		if ext == mediaExt {
			return true
		}
	}
	return false
}
