package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the current status of a backend download
type DownloadStatus string

const (
	StatusProcessing DownloadStatus = "processing"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
)

// Download is the history record of one backend download request
type Download struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	URL          string         `json:"url" gorm:"not null"`
	FormatID     string         `json:"format_id" gorm:"not null"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	FileName     string         `json:"file_name,omitempty"`
	SizeBytes    int64          `json:"size_bytes,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// NewDownload creates a history record for a download that is about to start
func NewDownload(url, formatID string) *Download {
	now := time.Now()
	return &Download{
		ID:        uuid.New().String(),
		URL:       url,
		FormatID:  formatID,
		Status:    StatusProcessing,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MarkCompleted marks the download as completed
func (d *Download) MarkCompleted(fileName string, size int64) {
	d.Status = StatusCompleted
	d.FileName = fileName
	d.SizeBytes = size
	now := time.Now()
	d.CompletedAt = &now
	d.UpdatedAt = now
}

// MarkFailed marks the download as failed
func (d *Download) MarkFailed(err error) {
	d.Status = StatusFailed
	d.ErrorMessage = err.Error()
	d.UpdatedAt = time.Now()
}

// IsTerminal checks if the download is in a terminal state
func (d *Download) IsTerminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusFailed
}

// ValidateStatus checks if a status filter value is known
func ValidateStatus(status DownloadStatus) bool {
	return status == StatusProcessing || status == StatusCompleted || status == StatusFailed
}
