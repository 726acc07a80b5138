package output

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/sdejongh/imdirdiff/pkg/models"
)

// palette colours classification symbols
type palette struct {
	symbols map[models.Classification]*color.Color
}

func newPalette(useColor bool) palette {
	p := palette{symbols: map[models.Classification]*color.Color{
		models.ClassLeftOnly:     color.New(color.FgRed),
		models.ClassRightOnly:    color.New(color.FgGreen),
		models.ClassDifferent:    color.New(color.FgYellow),
		models.ClassUndetermined: color.New(color.FgMagenta),
	}}
	for _, c := range p.symbols {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) symbol(class models.Classification) string {
	if c, ok := p.symbols[class]; ok {
		return c.Sprint(class.Symbol())
	}
	return class.Symbol()
}

// HumanFormatter formats output in human-readable format
type HumanFormatter struct {
	writer     io.Writer
	palette    palette
	totalPairs int
	startTime  time.Time
}

// NewHumanFormatter creates a new human-readable formatter
func NewHumanFormatter(useColor bool) *HumanFormatter {
	return &HumanFormatter{palette: newPalette(useColor)}
}

// Start initializes the formatter
func (f *HumanFormatter) Start(writer io.Writer, totalPairs int, maxWorkers int) error {
	f.writer = writer
	f.totalPairs = totalPairs
	f.startTime = time.Now()
	return nil
}

// Progress is a no-op: lines are only written once the report is sorted
func (f *HumanFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes one line per non-identical entry followed by the summary
func (f *HumanFormatter) Complete(report *models.DiffReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	writeListing(f.writer, report, f.palette)
	writeSummary(f.writer, report)
	return nil
}

// Error reports an error
func (f *HumanFormatter) Error(err error) error {
	if f.writer != nil {
		fmt.Fprintf(f.writer, "Error: %v\n", err)
	}
	return nil
}

// Name returns the formatter name
func (f *HumanFormatter) Name() string {
	return "human"
}

// writeListing prints "[SYMBOL] path" for every anomaly in report order
func writeListing(w io.Writer, report *models.DiffReport, p palette) {
	for _, e := range report.Anomalies() {
		fmt.Fprintf(w, "%s %s\n", p.symbol(e.Class), e.RelativePath)
	}
}

func writeSummary(w io.Writer, report *models.DiffReport) {
	s := report.Stats

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Compared in %s\n", report.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Summary:\n")
	fmt.Fprintf(w, "  Left:           %d images (%s)\n", s.LeftFiles, report.LeftPath)
	fmt.Fprintf(w, "  Right:          %d images (%s)\n", s.RightFiles, report.RightPath)
	fmt.Fprintf(w, "  Identical:      %d\n", s.Same)
	fmt.Fprintf(w, "  Different:      %d (%d dimensions, %d pixels)\n", s.Different, s.DimensionMismatches, s.PixelMismatches)
	fmt.Fprintf(w, "  Only in left:   %d\n", s.LeftOnly)
	fmt.Fprintf(w, "  Only in right:  %d\n", s.RightOnly)
	fmt.Fprintf(w, "  Undetermined:   %d\n", s.Undetermined)
	fmt.Fprintf(w, "  Data decoded:   %s\n", humanize.Bytes(uint64(s.BytesCompared)))

	if report.ReportPath != "" {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "Report: %s\n", report.ReportPath)
	}

	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Status: %s\n", report.Status)

	var undetermined []models.DiffEntry
	for _, e := range report.Entries {
		if e.Class == models.ClassUndetermined {
			undetermined = append(undetermined, e)
		}
	}
	if len(undetermined) > 0 {
		fmt.Fprintf(w, "\nErrors:\n")
		for _, e := range undetermined {
			fmt.Fprintf(w, "  %s: %s\n", e.RelativePath, e.Error)
		}
	}
}
