package output

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/cheggaaa/pb/v3"
	"golang.org/x/term"

	"github.com/sdejongh/imdirdiff/pkg/models"
)

const progressTemplate = `{{counters . }} {{bar . "[" "=" ">" " " "]" }} {{percent . }} {{etime . }} {{string . "path" }}`

// ProgressFormatter shows a progress bar while comparing, then the same
// listing and summary as HumanFormatter
type ProgressFormatter struct {
	writer    io.Writer
	barWriter io.Writer
	palette   palette

	mu  sync.Mutex
	bar *pb.ProgressBar
}

// NewProgressFormatter creates a progress bar formatter. The bar is drawn on
// barWriter so it never mixes with the listing.
func NewProgressFormatter(barWriter io.Writer, useColor bool) *ProgressFormatter {
	if barWriter == nil {
		barWriter = os.Stderr
	}
	return &ProgressFormatter{
		barWriter: barWriter,
		palette:   newPalette(useColor),
	}
}

// Start initializes the bar for totalPairs comparisons
func (f *ProgressFormatter) Start(writer io.Writer, totalPairs int, maxWorkers int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer

	bar := pb.New(totalPairs)
	bar.SetWriter(f.barWriter)
	bar.SetTemplateString(progressTemplate)
	bar.Set("path", "")

	// Default to 100 columns if the width can't be detected (pipe, redirect, etc.)
	width := 100
	if file, ok := f.barWriter.(*os.File); ok {
		if w, _, err := term.GetSize(int(file.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	bar.SetWidth(width)

	f.bar = bar.Start()
	return nil
}

// Progress advances the bar by one finished comparison
func (f *ProgressFormatter) Progress(update ProgressUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar == nil {
		return nil
	}

	switch update.Type {
	case EventCompareComplete, EventCompareError:
		f.bar.Set("path", update.Path)
		f.bar.Increment()
	}
	return nil
}

// Complete stops the bar and writes the listing and summary
func (f *ProgressFormatter) Complete(report *models.DiffReport) error {
	f.mu.Lock()
	if f.bar != nil {
		f.bar.Set("path", "")
		f.bar.Finish()
		f.bar = nil
	}
	f.mu.Unlock()

	if f.writer == nil {
		f.writer = io.Discard
	}

	writeListing(f.writer, report, f.palette)
	writeSummary(f.writer, report)
	return nil
}

// Error stops the bar and reports an error
func (f *ProgressFormatter) Error(err error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.bar != nil {
		f.bar.Finish()
		f.bar = nil
	}
	fmt.Fprintf(f.barWriter, "Error: %v\n", err)
	return nil
}

// Name returns the formatter name
func (f *ProgressFormatter) Name() string {
	return "progress"
}
