package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/ytfetch-go/internal/domain"
)

const ffmpegHint = ". Please install FFmpeg and add it to your PATH."

// DownloadService runs format lookups and downloads on behalf of HTTP
// clients and keeps a history record for every download.
type DownloadService struct {
	extractor domain.FormatExtractor
	repo      domain.DownloadRepository
	logger    *zap.Logger
}

// NewDownloadService creates a new download service
func NewDownloadService(extractor domain.FormatExtractor, repo domain.DownloadRepository, logger *zap.Logger) *DownloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DownloadService{
		extractor: extractor,
		repo:      repo,
		logger:    logger,
	}
}

// Recover fails history records orphaned by a previous run
func (s *DownloadService) Recover() error {
	n, err := s.repo.ResetOrphanedProcessing()
	if err != nil {
		return fmt.Errorf("failed to reset orphaned downloads: %w", err)
	}
	if n > 0 {
		s.logger.Warn("Reset orphaned downloads", zap.Int64("count", n))
	}
	return nil
}

// ListFormats returns the formats available for url
func (s *DownloadService) ListFormats(ctx context.Context, url string) (*domain.FormatListing, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, domain.ErrURLRequired
	}

	listing, err := s.extractor.ListFormats(ctx, url)
	if err != nil {
		s.logger.Warn("Format lookup failed", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	return listing, nil
}

// Download fetches url in formatID and records the outcome. The caller owns
// the returned file and must Release it once it has been served.
func (s *DownloadService) Download(ctx context.Context, url, formatID string) (*domain.FetchedFile, error) {
	url = strings.TrimSpace(url)
	formatID = strings.TrimSpace(formatID)
	if url == "" || formatID == "" {
		return nil, domain.ErrDownloadParamsRequired
	}

	record := domain.NewDownload(url, formatID)
	// History is best effort; a store failure must not block the download.
	if err := s.repo.Create(record); err != nil {
		s.logger.Error("Failed to create download record", zap.Error(err))
		record = nil
	}

	s.logger.Info("Download started",
		zap.String("url", url),
		zap.String("format_id", formatID))

	file, err := s.extractor.Fetch(ctx, url, formatID)
	if err != nil {
		err = withFFmpegHint(err)
		s.finish(record, func(d *domain.Download) { d.MarkFailed(err) })
		s.logger.Error("Download failed",
			zap.String("url", url),
			zap.String("format_id", formatID),
			zap.Error(err))
		return nil, err
	}

	s.finish(record, func(d *domain.Download) { d.MarkCompleted(file.Name, file.Size) })
	s.logger.Info("Download completed",
		zap.String("url", url),
		zap.String("format_id", formatID),
		zap.String("file", file.Name),
		zap.Int64("size", file.Size))

	return file, nil
}

// Release removes a served file from the work directory
func (s *DownloadService) Release(file *domain.FetchedFile) {
	if file == nil {
		return
	}
	if err := os.Remove(file.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Failed to remove served file",
			zap.String("path", file.Path),
			zap.Error(err))
	}
}

// History lists download records newest first
func (s *DownloadService) History(status domain.DownloadStatus, limit int) ([]*domain.Download, error) {
	if status != "" && !domain.ValidateStatus(status) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidStatus, status)
	}
	return s.repo.FindAll(status, limit)
}

// Stats returns download statistics
func (s *DownloadService) Stats() (*domain.DownloadStats, error) {
	return s.repo.GetStats()
}

func (s *DownloadService) finish(record *domain.Download, mark func(*domain.Download)) {
	if record == nil {
		return
	}
	mark(record)
	if err := s.repo.Update(record); err != nil {
		s.logger.Error("Failed to update download record",
			zap.String("id", record.ID),
			zap.Error(err))
	}
}

// withFFmpegHint tells the user how to fix merge failures
func withFFmpegHint(err error) error {
	if strings.Contains(strings.ToLower(err.Error()), "ffmpeg") {
		return fmt.Errorf("%w%s", err, ffmpegHint)
	}
	return err
}
