package output

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/nfnt/resize"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/imdirdiff/pkg/compare"
	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

//go:embed index.html.tpl
var indexTmpl string

//go:embed style.css
var styleCSS []byte

// Report directory layout
const (
	IndexFile   = "index.html"
	LeftDir     = "a"
	RightDir    = "b"
	DiffDir     = "diff"
	ThumbDir    = "thumbs"
	ThumbSuffix = ".sm.jpg"
)

// HTMLWriter writes index.html plus copies, diff images and thumbnails of
// every differing entry. Diff images are written as soon as they are
// rendered with WriteDiff; Write renders the page at the end of the run.
type HTMLWriter struct {
	dir         string
	thumbHeight int
	workers     int
	tpl         *template.Template

	openOnce sync.Once
	out      *storage.Local
	openErr  error
}

// htmlRow is one entry in the page
type htmlRow struct {
	Path      string
	Detail    string
	Exif      []string
	LeftSize  int64
	RightSize int64

	A, AThumb       string
	B, BThumb       string
	Diff, DiffThumb string
}

// htmlPage is the template data
type htmlPage struct {
	Left      string
	Right     string
	Generated time.Time
	Status    models.RunStatus
	Stats     models.Statistics

	LeftOnly     []htmlRow
	RightOnly    []htmlRow
	Different    []htmlRow
	Undetermined []htmlRow
}

// NewHTMLWriter creates a writer for the given report directory
func NewHTMLWriter(dir string, thumbHeight, workers int) *HTMLWriter {
	if workers < 1 {
		workers = 1
	}

	funcMap := template.FuncMap{
		"join": strings.Join,
		"humanizeSize": func(size int64) string {
			return humanize.Bytes(uint64(size))
		},
	}

	return &HTMLWriter{
		dir:         dir,
		thumbHeight: thumbHeight,
		workers:     workers,
		tpl:         template.Must(template.New("index").Funcs(funcMap).Parse(indexTmpl)),
	}
}

// ThumbName returns the thumbnail path for an artifact path. Thumbnails live
// in their own subtree so they never share a name with a copied image.
func ThumbName(p string) string {
	return path.Join(ThumbDir, p) + ThumbSuffix
}

// DiffName returns the diff image path for a relative path
func DiffName(rel string) string {
	return path.Join(DiffDir, rel) + ".png"
}

func (h *HTMLWriter) open() (*storage.Local, error) {
	h.openOnce.Do(func() {
		h.out, h.openErr = storage.CreateLocal(h.dir)
		if h.openErr != nil {
			h.openErr = fmt.Errorf("failed to create report directory: %w", h.openErr)
		}
	})
	return h.out, h.openErr
}

// WriteDiff stores the diff image of rel as PNG with its thumbnail and returns
// the artifact path relative to the report directory. It is safe for
// concurrent use; the caller can drop diff once it returns.
func (h *HTMLWriter) WriteDiff(ctx context.Context, rel string, diff image.Image) (string, error) {
	out, err := h.open()
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, diff); err != nil {
		return "", fmt.Errorf("failed to encode diff for %s: %w", rel, err)
	}

	target := DiffName(rel)
	if err := out.Write(ctx, target, &buf, int64(buf.Len())); err != nil {
		return "", err
	}
	if err := h.writeThumb(ctx, out, target, diff); err != nil {
		return "", err
	}
	return target, nil
}

// Write renders the report and returns the location of index.html.
// diffs maps relative paths to artifacts stored with WriteDiff; it may be nil.
func (h *HTMLWriter) Write(ctx context.Context, report *models.DiffReport, left, right storage.Backend, diffs map[string]string) (string, error) {
	out, err := h.open()
	if err != nil {
		return "", err
	}

	page := htmlPage{
		Left:      report.LeftPath,
		Right:     report.RightPath,
		Generated: time.Now(),
		Status:    report.Status,
		Stats:     report.Stats,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.workers)

	for _, e := range report.Anomalies() {
		row := htmlRow{Path: e.RelativePath, Exif: e.ExifChanges}
		if e.Left != nil {
			row.LeftSize = e.Left.Size
		}
		if e.Right != nil {
			row.RightSize = e.Right.Size
		}

		switch e.Class {
		case models.ClassLeftOnly:
			page.LeftOnly = append(page.LeftOnly, row)

		case models.ClassRightOnly:
			page.RightOnly = append(page.RightOnly, row)

		case models.ClassUndetermined:
			row.Detail = e.Error
			page.Undetermined = append(page.Undetermined, row)

		case models.ClassDifferent:
			if e.Outcome != nil {
				row.Detail = e.Outcome.Describe()
			}
			row.A = path.Join(LeftDir, e.RelativePath)
			row.AThumb = ThumbName(row.A)
			row.B = path.Join(RightDir, e.RelativePath)
			row.BThumb = ThumbName(row.B)

			rel := e.RelativePath
			leftSource, rightSource := sourcePath(e.Left, rel), sourcePath(e.Right, rel)
			g.Go(func() error { return h.copyWithThumb(gctx, out, left, leftSource, rel, LeftDir) })
			g.Go(func() error { return h.copyWithThumb(gctx, out, right, rightSource, rel, RightDir) })

			if diff, ok := diffs[rel]; ok {
				row.Diff = diff
				row.DiffThumb = ThumbName(diff)
			}

			page.Different = append(page.Different, row)
		}
	}

	if err := g.Wait(); err != nil {
		return "", err
	}

	if err := out.Write(ctx, "style.css", bytes.NewReader(styleCSS), int64(len(styleCSS))); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := h.tpl.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	if err := out.Write(ctx, IndexFile, &buf, int64(buf.Len())); err != nil {
		return "", err
	}

	return out.Location(IndexFile), nil
}

// sourcePath is the backend path of one side of an entry
func sourcePath(f *models.FileEntry, rel string) string {
	if f != nil && f.SourcePath != "" {
		return f.SourcePath
	}
	return rel
}

// copyWithThumb copies one side's file into the report and writes its thumbnail
func (h *HTMLWriter) copyWithThumb(ctx context.Context, out *storage.Local, src storage.Backend, source, rel, dir string) error {
	reader, err := src.Read(ctx, source)
	if err != nil {
		return fmt.Errorf("failed to copy %s into report: %w", rel, err)
	}
	data, err := io.ReadAll(reader)
	reader.Close()
	if err != nil {
		return fmt.Errorf("failed to copy %s into report: %w", rel, err)
	}

	target := path.Join(dir, rel)
	if err := out.Write(ctx, target, bytes.NewReader(data), int64(len(data))); err != nil {
		return err
	}

	img, err := compare.DecodePixels(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to decode %s for thumbnail: %w", target, err)
	}
	return h.writeThumb(ctx, out, target, img.Image())
}

// writeThumb scales img to the thumbnail height, preserving aspect ratio
func (h *HTMLWriter) writeThumb(ctx context.Context, out *storage.Local, target string, img image.Image) error {
	thumb := resize.Resize(0, uint(h.thumbHeight), img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 85}); err != nil {
		return fmt.Errorf("failed to encode thumbnail for %s: %w", target, err)
	}
	return out.Write(ctx, ThumbName(target), &buf, int64(buf.Len()))
}
