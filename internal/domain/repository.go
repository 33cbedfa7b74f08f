package domain

// DownloadRepository defines the interface for download history persistence
type DownloadRepository interface {
	// Create creates a new download record
	Create(download *Download) error

	// Update updates an existing download record
	Update(download *Download) error

	// FindByID finds a download by ID
	FindByID(id string) (*Download, error)

	// FindAll finds downloads, newest first, optionally filtered by status
	FindAll(status DownloadStatus, limit int) ([]*Download, error)

	// GetStats returns download statistics
	GetStats() (*DownloadStats, error)

	// ResetOrphanedProcessing fails records left in processing by a previous run
	ResetOrphanedProcessing() (int64, error)
}

// DownloadStats represents download statistics
type DownloadStats struct {
	Total      int64 `json:"total"`
	Processing int64 `json:"processing"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}
