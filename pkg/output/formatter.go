package output

import (
	"io"

	"github.com/sdejongh/imdirdiff/pkg/models"
)

// Progress event types
const (
	EventCompareComplete = "compare_complete"
	EventCompareError    = "compare_error"
)

// ProgressUpdate represents a progress notification during a run
type ProgressUpdate struct {
	Type    string
	Path    string
	Class   models.Classification
	Current int
	Total   int
	Error   error
}

// Formatter defines the interface for output formatting
// Implementations include human-readable, JSON, and progress bar formatters
type Formatter interface {
	// Start initializes the formatter once the number of image pairs is known
	// maxWorkers indicates the number of parallel workers for display purposes
	Start(writer io.Writer, totalPairs int, maxWorkers int) error

	// Progress reports a finished comparison
	Progress(update ProgressUpdate) error

	// Complete finalizes output from the sorted report
	Complete(report *models.DiffReport) error

	// Error reports a fatal error
	Error(err error) error

	// Name returns the formatter name
	Name() string
}
