package domain

import "context"

// FormatExtractor lists and fetches renditions of a media URL
type FormatExtractor interface {
	// ListFormats returns the deduplicated formats available for url
	ListFormats(ctx context.Context, url string) (*FormatListing, error)

	// Fetch downloads url in the given format into the work directory
	Fetch(ctx context.Context, url, formatID string) (*FetchedFile, error)
}

// FetchedFile is a file produced by the extractor on local disk
type FetchedFile struct {
	Path string // absolute path in the work directory
	Name string // sanitised name offered to the client
	Size int64
}
