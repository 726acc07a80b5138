package models

import (
	"time"
)

// DiffReport represents the results of a comparison run
type DiffReport struct {
	// Operation details
	OperationID string
	LeftPath    string
	RightPath   string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Entries holds every compared path, sorted by RelativePath,
	// including Same entries
	Entries []DiffEntry

	// Statistics
	Stats Statistics

	// ReportPath is the written HTML index, if any
	ReportPath string

	// Overall status
	Status RunStatus
}

// Anomalies returns the entries that are surfaced in output, in order
func (r *DiffReport) Anomalies() []DiffEntry {
	out := make([]DiffEntry, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Class.IsAnomaly() {
			out = append(out, e)
		}
	}
	return out
}

// Statistics holds per-run counters
type Statistics struct {
	LeftFiles  int `json:"left_files"`
	RightFiles int `json:"right_files"`

	LeftOnly     int `json:"left_only"`
	RightOnly    int `json:"right_only"`
	Same         int `json:"same"`
	Different    int `json:"different"`
	Undetermined int `json:"undetermined"`

	DimensionMismatches int `json:"dimension_mismatches"`
	PixelMismatches     int `json:"pixel_mismatches"`

	// BytesCompared sums the sizes of both sides of every compared path
	BytesCompared int64 `json:"bytes_compared"`
}

// Differences returns the number of confirmed differences
func (s Statistics) Differences() int {
	return s.LeftOnly + s.RightOnly + s.Different
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusIdentical indicates no differences were found
	StatusIdentical RunStatus = "identical"
	// StatusDifferent indicates at least one confirmed difference
	StatusDifferent RunStatus = "different"
	// StatusUndetermined indicates at least one comparison could not be completed
	StatusUndetermined RunStatus = "undetermined"
	// StatusFailed indicates the run itself failed
	StatusFailed RunStatus = "failed"
)

// ExitCode returns the appropriate exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusIdentical:
		return 0
	case StatusDifferent:
		return 1
	case StatusUndetermined:
		return 2
	case StatusFailed:
		return 3
	default:
		return 3
	}
}
