package models

import "fmt"

// OutcomeKind categorizes the result of comparing two decoded images
type OutcomeKind string

const (
	// OutcomeIdentical indicates every pixel and channel is equal
	OutcomeIdentical OutcomeKind = "identical"
	// OutcomeDimensionMismatch indicates width and/or height differ
	OutcomeDimensionMismatch OutcomeKind = "dimension_mismatch"
	// OutcomePixelMismatch indicates same dimensions but differing pixel data
	OutcomePixelMismatch OutcomeKind = "pixel_mismatch"
)

// Dimensions is the pixel size of a decoded image
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Outcome holds the result of comparing two images that both decoded
type Outcome struct {
	Kind  OutcomeKind `json:"kind"`
	Left  Dimensions  `json:"left"`
	Right Dimensions  `json:"right"`

	// ChangedPixels counts differing pixels when a difference mask was computed.
	// For dimension mismatches the count covers the union canvas.
	ChangedPixels int `json:"changed_pixels,omitempty"`
}

// Classification maps the outcome onto the report category
func (o *Outcome) Classification() Classification {
	if o.Kind == OutcomeIdentical {
		return ClassSame
	}
	return ClassDifferent
}

// Describe returns a short human-readable explanation
func (o *Outcome) Describe() string {
	switch o.Kind {
	case OutcomeIdentical:
		return "images are identical"
	case OutcomeDimensionMismatch:
		return fmt.Sprintf("dimensions differ: %s vs %s", o.Left, o.Right)
	case OutcomePixelMismatch:
		if o.ChangedPixels > 0 {
			return fmt.Sprintf("%d pixels differ", o.ChangedPixels)
		}
		return "pixel data differs"
	default:
		return string(o.Kind)
	}
}
