package compare

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	// Registered decoders
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/sdejongh/imdirdiff/pkg/models"
)

// PixelImage is a decoded image normalized to non-premultiplied RGBA with a
// fixed channel order. Sources with 16-bit channels keep their depth.
type PixelImage struct {
	Width  int
	Height int

	// Format is the registered decoder name (png, jpeg, ...)
	Format string

	img image.Image

	// frames holds the composited frames after the first of an animated GIF
	frames []*image.NRGBA
}

var gifMagic = []byte("GIF8")

// DecodePixels decodes any registered format into a PixelImage. Animated GIFs
// keep every frame, composited onto the logical screen as a player shows it.
func DecodePixels(r io.Reader) (*PixelImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if bytes.HasPrefix(data, gifMagic) {
		return decodeGIF(data)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	return normalize(src, format), nil
}

func decodeGIF(data []byte) (*PixelImage, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(g.Image) == 1 {
		return normalize(g.Image[0], "gif"), nil
	}

	frames := compositeFrames(g)
	first := frames[0]
	return &PixelImage{
		Width:  first.Rect.Dx(),
		Height: first.Rect.Dy(),
		Format: "gif",
		img:    first,
		frames: frames[1:],
	}, nil
}

// compositeFrames renders each frame of an animation over the previous
// canvas, applying the disposal method of the frame before it
func compositeFrames(g *gif.GIF) []*image.NRGBA {
	rect := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	for _, frame := range g.Image {
		rect = rect.Union(image.Rect(0, 0, frame.Rect.Max.X, frame.Rect.Max.Y))
	}

	canvas := image.NewNRGBA(rect)
	frames := make([]*image.NRGBA, 0, len(g.Image))

	for i, frame := range g.Image {
		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var previous *image.NRGBA
		if disposal == gif.DisposalPrevious {
			previous = cloneNRGBA(canvas)
		}

		draw.Draw(canvas, frame.Rect, frame, frame.Rect.Min, draw.Over)
		frames = append(frames, cloneNRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Rect, image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = previous
		}
	}

	return frames
}

func cloneNRGBA(src *image.NRGBA) *image.NRGBA {
	dst := image.NewNRGBA(src.Rect)
	copy(dst.Pix, src.Pix)
	return dst
}

func normalize(src image.Image, format string) *PixelImage {
	b := src.Bounds()
	rect := image.Rect(0, 0, b.Dx(), b.Dy())

	var dst image.Image
	switch s := src.(type) {
	case *image.NRGBA:
		out := image.NewNRGBA(rect)
		copyRows(out.Pix, out.Stride, s.Pix, s.Stride, s.PixOffset(b.Min.X, b.Min.Y), rect.Dy())
		dst = out
	case *image.NRGBA64:
		out := image.NewNRGBA64(rect)
		copyRows(out.Pix, out.Stride, s.Pix, s.Stride, s.PixOffset(b.Min.X, b.Min.Y), rect.Dy())
		dst = out
	default:
		var out draw.Image
		if isDeep(src) {
			out = image.NewNRGBA64(rect)
		} else {
			out = image.NewNRGBA(rect)
		}
		draw.Draw(out, rect, src, b.Min, draw.Src)
		dst = out
	}

	return &PixelImage{
		Width:  rect.Dx(),
		Height: rect.Dy(),
		Format: format,
		img:    dst,
	}
}

// copyRows copies rows of dst.Stride bytes from a possibly offset source
func copyRows(dst []uint8, dstStride int, src []uint8, srcStride, offset, rows int) {
	for y := 0; y < rows; y++ {
		start := offset + y*srcStride
		copy(dst[y*dstStride:(y+1)*dstStride], src[start:start+dstStride])
	}
}

func isDeep(img image.Image) bool {
	switch img.ColorModel() {
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model, color.Alpha16Model:
		return true
	}
	return false
}

// Dimensions returns the pixel size of the image
func (p *PixelImage) Dimensions() models.Dimensions {
	return models.Dimensions{Width: p.Width, Height: p.Height}
}

// Image returns the normalized image
func (p *PixelImage) Image() image.Image {
	return p.img
}

// FrameCount returns the number of animation frames, 1 for still images
func (p *PixelImage) FrameCount() int {
	return 1 + len(p.frames)
}

// Deep reports whether channels are stored with 16 bits
func (p *PixelImage) Deep() bool {
	_, ok := p.img.(*image.NRGBA64)
	return ok
}

// pix returns the raw buffer and stride at the requested depth.
// 8-bit channels are promoted by replicating each byte (v -> v<<8 | v).
func (p *PixelImage) pix(deep bool) ([]uint8, int) {
	switch img := p.img.(type) {
	case *image.NRGBA64:
		return img.Pix, img.Stride
	case *image.NRGBA:
		if !deep {
			return img.Pix, img.Stride
		}
		promoted := make([]uint8, 2*len(img.Pix))
		for i, v := range img.Pix {
			promoted[2*i] = v
			promoted[2*i+1] = v
		}
		return promoted, 2 * img.Stride
	}
	return nil, 0
}
