package compare

import (
	"bytes"
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/gift"
)

// diffHighlight marks changed pixels in rendered diffs
var diffHighlight = color.NRGBA{R: 255, G: 0, B: 0, A: 255}

// Equal reports whether two images have the same dimensions and identical
// channel values at every pixel of every frame. There is no tolerance.
func Equal(a, b *PixelImage) bool {
	if a.Width != b.Width || a.Height != b.Height || len(a.frames) != len(b.frames) {
		return false
	}

	deep := a.Deep() || b.Deep()
	pa, _ := a.pix(deep)
	pb, _ := b.pix(deep)
	if !bytes.Equal(pa, pb) {
		return false
	}

	for i := range a.frames {
		if !bytes.Equal(a.frames[i].Pix, b.frames[i].Pix) {
			return false
		}
	}
	return true
}

// DiffMask records which pixels differ on a canvas covering both images
type DiffMask struct {
	Width   int
	Height  int
	Changed []bool
	Count   int
}

// At reports whether the pixel at (x, y) differs
func (m *DiffMask) At(x, y int) bool {
	if x < 0 || y < 0 || x >= m.Width || y >= m.Height {
		return false
	}
	return m.Changed[y*m.Width+x]
}

// Mask computes the per-pixel difference of two images. The canvas is the
// maximum width and height of both, with each image anchored at the origin.
// A pixel covered by only one image counts as changed.
func Mask(a, b *PixelImage) *DiffMask {
	w := max(a.Width, b.Width)
	h := max(a.Height, b.Height)
	m := &DiffMask{Width: w, Height: h, Changed: make([]bool, w*h)}

	deep := a.Deep() || b.Deep()
	bpp := 4
	if deep {
		bpp = 8
	}
	pa, sa := a.pix(deep)
	pb, sb := b.pix(deep)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			inA := x < a.Width && y < a.Height
			inB := x < b.Width && y < b.Height

			var changed bool
			switch {
			case inA && inB:
				oa := y*sa + x*bpp
				ob := y*sb + x*bpp
				changed = !bytes.Equal(pa[oa:oa+bpp], pb[ob:ob+bpp])
			case inA || inB:
				changed = true
			}

			if changed {
				m.Changed[y*w+x] = true
				m.Count++
			}
		}
	}

	for i := 0; i < min(len(a.frames), len(b.frames)); i++ {
		markFrame(m, a.frames[i], b.frames[i])
	}

	return m
}

// markFrame adds pixels that differ between two later animation frames
func markFrame(m *DiffMask, fa, fb *image.NRGBA) {
	w := min(fa.Rect.Dx(), fb.Rect.Dx(), m.Width)
	h := min(fa.Rect.Dy(), fb.Rect.Dy(), m.Height)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if m.Changed[y*m.Width+x] {
				continue
			}
			oa := y*fa.Stride + x*4
			ob := y*fb.Stride + x*4
			if !bytes.Equal(fa.Pix[oa:oa+4], fb.Pix[ob:ob+4]) {
				m.Changed[y*m.Width+x] = true
				m.Count++
			}
		}
	}
}

// RenderDiff draws a grayscale copy of the left image on the mask canvas and
// paints changed pixels in red. Areas covered only by the right image are
// drawn from it.
func RenderDiff(a, b *PixelImage, m *DiffMask) image.Image {
	canvas := image.NewNRGBA(image.Rect(0, 0, m.Width, m.Height))

	g := gift.New(gift.Grayscale())
	if b.Width > a.Width || b.Height > a.Height {
		g.Draw(canvas, b.Image())
	}
	gray := image.NewNRGBA(g.Bounds(a.Image().Bounds()))
	g.Draw(gray, a.Image())
	draw.Draw(canvas, gray.Bounds(), gray, image.Point{}, draw.Src)

	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			if m.At(x, y) {
				canvas.SetNRGBA(x, y, diffHighlight)
			}
		}
	}

	return canvas
}
