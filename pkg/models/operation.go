package models

import (
	"time"
)

// DefaultImageExtensions are the file extensions indexed when none are configured
var DefaultImageExtensions = []string{"gif", "jpg", "jpeg", "png", "webp", "bmp", "tif", "tiff"}

// DiffOperation represents one comparison run configuration
type DiffOperation struct {
	ID        string
	LeftPath  string
	RightPath string

	// Extensions restricts indexing to image files (lowercase, no dot)
	Extensions      []string
	ExcludePatterns []string

	MaxWorkers int
	// BufferSize is the read buffer used when hashing files
	BufferSize int
	// BandwidthLimit caps image reads in bytes per second; 0 means unlimited
	BandwidthLimit int64

	// Exif lists differing EXIF tags for differing images
	Exif bool
	// TrustIdenticalBytes skips decoding when both files hash identically
	TrustIdenticalBytes bool
	// RenderDiffs enables diff image rendering for differing entries
	RenderDiffs bool

	// ReportDir is where the HTML artifact is written; empty disables it
	ReportDir   string
	ThumbHeight int

	CreatedAt   time.Time
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Validate checks if the operation configuration is valid
func (op *DiffOperation) Validate() error {
	if op.LeftPath == "" {
		return &ValidationError{Field: "LeftPath", Message: "left path is required"}
	}
	if op.RightPath == "" {
		return &ValidationError{Field: "RightPath", Message: "right path is required"}
	}
	if op.MaxWorkers < 1 {
		return &ValidationError{Field: "MaxWorkers", Message: "max workers must be at least 1"}
	}
	if len(op.Extensions) == 0 {
		return &ValidationError{Field: "Extensions", Message: "at least one image extension is required"}
	}
	if op.ReportDir != "" && op.ThumbHeight < 1 {
		return &ValidationError{Field: "ThumbHeight", Message: "thumbnail height must be at least 1"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
