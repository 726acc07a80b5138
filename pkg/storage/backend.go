package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	// Path is the backend-specific location (filesystem path or s3:// URI)
	Path         string
	Size         int64
	ModTime      time.Time
	IsDir        bool
	RelativePath string
}

// Backend defines the read-only view of one comparison root.
// Implementations include the local filesystem and S3.
type Backend interface {
	// List returns every entry under the root recursively
	List(ctx context.Context) ([]FileInfo, error)

	// Read opens a file for reading
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Stat returns file metadata
	Stat(ctx context.Context, path string) (*FileInfo, error)

	// Location returns the absolute location of a relative path
	Location(path string) string

	// Root returns the root this backend was opened on
	Root() string

	// Close releases any resources held by the backend
	Close() error
}

// Writer is implemented by backends that can receive report artifacts
type Writer interface {
	// Write creates or overwrites a file with the given content.
	// A negative size skips the written-length check.
	Write(ctx context.Context, path string, reader io.Reader, size int64) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error
}
