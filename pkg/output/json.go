package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/imdirdiff/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer io.Writer
	errors []string
}

// JSONReportData represents the final report document
type JSONReportData struct {
	OperationID string             `json:"operation_id"`
	Left        string             `json:"left"`
	Right       string             `json:"right"`
	Status      string             `json:"status"`
	ExitCode    int                `json:"exit_code"`
	Duration    string             `json:"duration"`
	DurationMs  int64              `json:"duration_ms"`
	Stats       models.Statistics  `json:"stats"`
	Entries     []models.DiffEntry `json:"entries"`
	ReportPath  string             `json:"report_path,omitempty"`
	Errors      []string           `json:"errors,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, totalPairs int, maxWorkers int) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress is not streamed, to keep the output a single parseable document
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	return nil
}

// Complete writes the report as one JSON document. Only non-identical
// entries are listed; identical ones are counted in stats.
func (f *JSONFormatter) Complete(report *models.DiffReport) error {
	if f.writer == nil {
		f.writer = io.Discard
	}

	entries := report.Anomalies()

	data := JSONReportData{
		OperationID: report.OperationID,
		Left:        report.LeftPath,
		Right:       report.RightPath,
		Status:      string(report.Status),
		ExitCode:    report.Status.ExitCode(),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Stats:       report.Stats,
		Entries:     entries,
		ReportPath:  report.ReportPath,
		Errors:      f.errors,
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error writes a failure document; a fatal error ends the run without a report
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}
	f.errors = append(f.errors, err.Error())

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(JSONReportData{
		Status:   string(models.StatusFailed),
		ExitCode: models.StatusFailed.ExitCode(),
		Entries:  []models.DiffEntry{},
		Errors:   f.errors,
	})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
