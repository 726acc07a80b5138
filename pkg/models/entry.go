package models

import (
	"time"
)

// FileEntry represents one side of a compared path
type FileEntry struct {
	// RelativePath is the normalized, slash-separated path relative to the root
	RelativePath string
	// AbsolutePath is the location of the file on its backend
	AbsolutePath string
	// SourcePath is the path exactly as the backend listed it. Reads go
	// through it because some backends (S3) accept keys such as "p//a.png"
	// that only normalize to RelativePath.
	SourcePath string
	// Size in bytes
	Size int64
	// ModTime is the last modification time
	ModTime time.Time
}

// Classification is the category a path falls into after a run
type Classification string

const (
	// ClassLeftOnly indicates the path exists only in the left root
	ClassLeftOnly Classification = "left_only"
	// ClassRightOnly indicates the path exists only in the right root
	ClassRightOnly Classification = "right_only"
	// ClassSame indicates both images decode to identical pixels
	ClassSame Classification = "same"
	// ClassDifferent indicates both images decoded and differ
	ClassDifferent Classification = "different"
	// ClassUndetermined indicates the comparison could not be completed
	ClassUndetermined Classification = "undetermined"
)

// Symbol returns the console marker for the classification.
// Same entries have no marker because they are never printed.
func (c Classification) Symbol() string {
	switch c {
	case ClassLeftOnly:
		return "[-]"
	case ClassRightOnly:
		return "[+]"
	case ClassDifferent:
		return "[≠]"
	case ClassUndetermined:
		return "[!]"
	default:
		return ""
	}
}

// IsAnomaly reports whether entries of this class are surfaced in output
func (c Classification) IsAnomaly() bool {
	return c != ClassSame
}

// DiffEntry is the unit a report renders
type DiffEntry struct {
	RelativePath string         `json:"path"`
	Class        Classification `json:"class"`

	// Outcome is set for paths present on both sides that decoded
	Outcome *Outcome `json:"outcome,omitempty"`

	// Error holds the failure for undetermined entries
	Error string `json:"error,omitempty"`
	// ErrorSide is "left" or "right" when the failure is tied to one side
	ErrorSide string `json:"error_side,omitempty"`

	Left  *FileEntry `json:"left,omitempty"`
	Right *FileEntry `json:"right,omitempty"`

	// ExifChanges lists EXIF tag names whose values differ between sides
	ExifChanges []string `json:"exif_changes,omitempty"`
}
