package compare

import (
	"context"
	"fmt"
	"image"

	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// Side identifies which root a file belongs to
type Side string

const (
	// SideLeft is the first root given on the command line
	SideLeft Side = "left"
	// SideRight is the second root given on the command line
	SideRight Side = "right"
)

// Comparison holds the result of comparing two images
type Comparison struct {
	LeftPath  string
	RightPath string
	Outcome   models.Outcome

	// Diff is the rendered difference image, nil when rendering is disabled
	// or the images are identical
	Diff image.Image

	// ExifChanges lists EXIF tags whose values differ (informational only)
	ExifChanges []string

	// BytesCompared is the total size of both encoded files
	BytesCompared int64
}

// Comparator defines the interface for image comparison algorithms
type Comparator interface {
	// Compare compares two images and returns the outcome.
	// A failure to read or decode either side is returned as *DecodeError.
	Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error)

	// Name returns the name of the comparison method
	Name() string
}

// DecodeError reports that one side could not be read or decoded.
// It is local to a single path and never aborts a run.
type DecodeError struct {
	Side Side
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s image %s: %v", e.Side, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
