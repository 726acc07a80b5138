package compare

import (
	"bytes"
	"context"
	"io"

	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// PixelComparator decodes both files and compares them pixel by pixel
type PixelComparator struct {
	renderDiffs bool
	exif        bool
}

// NewPixelComparator creates a strict pixel comparator.
// When renderDiffs is set, differing pairs carry a rendered diff image.
func NewPixelComparator(renderDiffs bool) *PixelComparator {
	return &PixelComparator{renderDiffs: renderDiffs, exif: true}
}

// SetExifEnabled toggles collection of differing EXIF tags
func (c *PixelComparator) SetExifEnabled(enabled bool) {
	c.exif = enabled
}

// Compare decodes both sides and classifies the pair
func (c *PixelComparator) Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error) {
	leftData, err := readAll(ctx, left, leftPath)
	if err != nil {
		return nil, &DecodeError{Side: SideLeft, Path: leftPath, Err: err}
	}
	leftImg, err := DecodePixels(bytes.NewReader(leftData))
	if err != nil {
		return nil, &DecodeError{Side: SideLeft, Path: leftPath, Err: err}
	}

	rightData, err := readAll(ctx, right, rightPath)
	if err != nil {
		return nil, &DecodeError{Side: SideRight, Path: rightPath, Err: err}
	}
	rightImg, err := DecodePixels(bytes.NewReader(rightData))
	if err != nil {
		return nil, &DecodeError{Side: SideRight, Path: rightPath, Err: err}
	}

	result := &Comparison{
		LeftPath:      leftPath,
		RightPath:     rightPath,
		Outcome:       ComparePixels(leftImg, rightImg),
		BytesCompared: int64(len(leftData) + len(rightData)),
	}

	if result.Outcome.Kind == models.OutcomeIdentical {
		return result, nil
	}

	if c.renderDiffs {
		mask := Mask(leftImg, rightImg)
		result.Outcome.ChangedPixels = mask.Count
		result.Diff = RenderDiff(leftImg, rightImg, mask)
	}

	if c.exif {
		result.ExifChanges = ExifChanges(leftData, rightData)
	}

	return result, nil
}

// ComparePixels classifies two decoded images. Pixel buffers are only
// compared when dimensions match.
func ComparePixels(a, b *PixelImage) models.Outcome {
	outcome := models.Outcome{Left: a.Dimensions(), Right: b.Dimensions()}

	switch {
	case a.Width != b.Width || a.Height != b.Height:
		outcome.Kind = models.OutcomeDimensionMismatch
	case Equal(a, b):
		outcome.Kind = models.OutcomeIdentical
	default:
		outcome.Kind = models.OutcomePixelMismatch
	}

	return outcome
}

// Name returns the comparator name
func (c *PixelComparator) Name() string {
	return "pixel"
}

func readAll(ctx context.Context, backend storage.Backend, path string) ([]byte, error) {
	reader, err := backend.Read(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}
