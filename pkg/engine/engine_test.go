package engine

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/imdirdiff/pkg/compare"
	"github.com/sdejongh/imdirdiff/pkg/index"
	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/output"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// TestHelper builds a pair of roots in temp directories
type TestHelper struct {
	t     *testing.T
	left  string
	right string
}

func NewTestHelper(t *testing.T) *TestHelper {
	return &TestHelper{t: t, left: t.TempDir(), right: t.TempDir()}
}

func (h *TestHelper) image(root, rel string, w, h2 int, c color.Color) {
	h.t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h2))
	for y := 0; y < h2; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(h.t, png.Encode(&buf, img))
	h.raw(root, rel, buf.Bytes())
}

func (h *TestHelper) raw(root, rel string, data []byte) {
	h.t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(h.t, os.WriteFile(path, data, 0644))
}

func (h *TestHelper) Left(rel string, w, ht int, c color.Color)  { h.image(h.left, rel, w, ht, c) }
func (h *TestHelper) Right(rel string, w, ht int, c color.Color) { h.image(h.right, rel, w, ht, c) }

func (h *TestHelper) Operation() *models.DiffOperation {
	return &models.DiffOperation{
		ID:          "test",
		LeftPath:    h.left,
		RightPath:   h.right,
		Extensions:  models.DefaultImageExtensions,
		MaxWorkers:  4,
		RenderDiffs: true,
		ThumbHeight: 16,
	}
}

// Run executes the engine with a colourless human formatter
func (h *TestHelper) Run(op *models.DiffOperation, comparator compare.Comparator) (*models.DiffReport, string, error) {
	h.t.Helper()
	left, err := storage.NewLocal(op.LeftPath)
	require.NoError(h.t, err)
	right, err := storage.NewLocal(op.RightPath)
	require.NoError(h.t, err)

	if comparator == nil {
		comparator = compare.NewPixelComparator(op.RenderDiffs)
	}

	var out bytes.Buffer
	eng := NewEngine(left, right, comparator, output.NewHumanFormatter(false), nil, op)
	eng.SetOutput(&out)

	report, err := eng.Run(context.Background())
	return report, out.String(), err
}

func listing(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "[") {
			lines = append(lines, line)
		}
	}
	return lines
}

func scenario(h *TestHelper) {
	red := color.NRGBA{R: 255, A: 255}
	blue := color.NRGBA{B: 255, A: 255}

	h.Left("same.png", 4, 4, red)
	h.Right("same.png", 4, 4, red)
	h.Left("different.png", 4, 4, red)
	h.Right("different.png", 4, 4, blue)
	h.Left("a_only.png", 2, 2, red)
	h.Left("c/recursive.png", 4, 4, red)
	h.Right("c/recursive.png", 4, 2, red)
	h.Right("b_only.png", 2, 2, blue)
}

func TestEngineScenario(t *testing.T) {
	h := NewTestHelper(t)
	scenario(h)

	report, out, err := h.Run(h.Operation(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"[-] a_only.png",
		"[+] b_only.png",
		"[≠] c/recursive.png",
		"[≠] different.png",
	}, listing(out))

	assert.Equal(t, models.StatusDifferent, report.Status)
	assert.Equal(t, 1, report.Status.ExitCode())
	assert.Equal(t, 1, report.Stats.Same)
	assert.Equal(t, 2, report.Stats.Different)
	assert.Equal(t, 1, report.Stats.DimensionMismatches)
	assert.Equal(t, 1, report.Stats.PixelMismatches)
	assert.Equal(t, 4, report.Stats.LeftFiles)
	assert.Equal(t, 4, report.Stats.RightFiles)
	assert.Positive(t, report.Stats.BytesCompared)
	assert.Empty(t, report.ReportPath)
	assert.Len(t, report.Entries, 5)
}

func TestEngineIdentical(t *testing.T) {
	h := NewTestHelper(t)
	h.Left("x.png", 3, 3, color.White)
	h.Right("x.png", 3, 3, color.White)
	h.raw(h.left, "notes.txt", []byte("not an image"))

	report, out, err := h.Run(h.Operation(), nil)
	require.NoError(t, err)
	assert.Empty(t, listing(out))
	assert.Equal(t, models.StatusIdentical, report.Status)
	assert.Equal(t, 0, report.Status.ExitCode())
}

func TestEngineDecodeFailure(t *testing.T) {
	h := NewTestHelper(t)
	h.Left("broken.png", 2, 2, color.White)
	h.raw(h.right, "broken.png", []byte("garbage"))
	h.Left("gone.png", 2, 2, color.White)

	report, out, err := h.Run(h.Operation(), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"[!] broken.png", "[-] gone.png"}, listing(out))
	assert.Equal(t, models.StatusUndetermined, report.Status)
	assert.Equal(t, 2, report.Status.ExitCode())

	entry := report.Entries[0]
	assert.Equal(t, models.ClassUndetermined, entry.Class)
	assert.Equal(t, "right", entry.ErrorSide)
	assert.Contains(t, out, "Errors:")
}

func TestEngineEmptyRoots(t *testing.T) {
	h := NewTestHelper(t)

	report, out, err := h.Run(h.Operation(), nil)
	require.NoError(t, err)
	assert.Empty(t, listing(out))
	assert.Empty(t, report.Entries)
	assert.Equal(t, models.StatusIdentical, report.Status)
}

func TestEngineExcludes(t *testing.T) {
	h := NewTestHelper(t)
	h.Left("keep.png", 2, 2, color.White)
	h.Left("tmp/skip.png", 2, 2, color.White)
	h.Right("keep.png", 2, 2, color.White)
	h.Right("drafts/extra.png", 2, 2, color.Black)
	h.raw(h.right, index.IgnoreFileName, []byte("# local drafts\ndrafts/\n"))

	op := h.Operation()
	op.ExcludePatterns = []string{"tmp/"}

	report, out, err := h.Run(op, nil)
	require.NoError(t, err)
	assert.Empty(t, listing(out))
	assert.Equal(t, models.StatusIdentical, report.Status)
}

func TestEngineTrustIdenticalBytes(t *testing.T) {
	h := NewTestHelper(t)
	// Identical garbage is accepted without decoding
	h.raw(h.left, "blob.png", []byte("same bytes"))
	h.raw(h.right, "blob.png", []byte("same bytes"))

	op := h.Operation()
	comparator := compare.NewDigestComparator(compare.NewPixelComparator(false), 4096)

	report, _, err := h.Run(op, comparator)
	require.NoError(t, err)
	assert.Equal(t, models.StatusIdentical, report.Status)
	assert.Equal(t, int64(20), report.Stats.BytesCompared)
}

func TestEngineReportDir(t *testing.T) {
	h := NewTestHelper(t)
	scenario(h)

	op := h.Operation()
	op.ReportDir = filepath.Join(t.TempDir(), "out")

	report, out, err := h.Run(op, nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(op.ReportDir, output.IndexFile), report.ReportPath)
	assert.Contains(t, out, "Report: "+report.ReportPath)

	for _, rel := range []string{
		"index.html",
		"a/different.png", "b/different.png",
		"thumbs/a/different.png.sm.jpg", "thumbs/b/different.png.sm.jpg",
		"diff/different.png.png", "thumbs/diff/different.png.png.sm.jpg",
		"diff/c/recursive.png.png",
	} {
		_, err := os.Stat(filepath.Join(op.ReportDir, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}

	_, err = os.Stat(filepath.Join(op.ReportDir, "a", "same.png"))
	assert.True(t, os.IsNotExist(err))

	t.Run("NoDiffImages", func(t *testing.T) {
		op := h.Operation()
		op.ReportDir = filepath.Join(t.TempDir(), "out")
		op.RenderDiffs = false

		_, _, err := h.Run(op, nil)
		require.NoError(t, err)
		_, err = os.Stat(filepath.Join(op.ReportDir, "diff"))
		assert.True(t, os.IsNotExist(err))
		_, err = os.Stat(filepath.Join(op.ReportDir, "a", "different.png"))
		assert.NoError(t, err)
	})
}

func TestEngineBandwidthLimit(t *testing.T) {
	h := NewTestHelper(t)
	h.Left("x.png", 2, 2, color.White)
	h.Right("x.png", 2, 2, color.Black)

	op := h.Operation()
	op.BandwidthLimit = 10 * 1024 * 1024

	report, _, err := h.Run(op, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDifferent, report.Status)
}

func TestEngineInvalidOperation(t *testing.T) {
	h := NewTestHelper(t)
	op := h.Operation()
	op.MaxWorkers = 0

	_, _, err := h.Run(op, nil)
	var verr *models.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestEngineBadExclude(t *testing.T) {
	h := NewTestHelper(t)
	op := h.Operation()
	op.ExcludePatterns = []string{"[unterminated"}

	_, _, err := h.Run(op, nil)
	assert.Error(t, err)
}

func TestCompareAllReleasesDiffImages(t *testing.T) {
	h := NewTestHelper(t)
	for _, rel := range []string{"a.png", "b.png", "c/d.png"} {
		h.Left(rel, 8, 8, color.White)
		h.Right(rel, 8, 8, color.Black)
	}
	h.Left("same.png", 2, 2, color.White)
	h.Right("same.png", 2, 2, color.White)

	op := h.Operation()
	op.ReportDir = filepath.Join(t.TempDir(), "out")

	left, err := storage.NewLocal(op.LeftPath)
	require.NoError(t, err)
	right, err := storage.NewLocal(op.RightPath)
	require.NoError(t, err)

	eng := NewEngine(left, right, compare.NewPixelComparator(true), nil, nil, op)
	eng.html = output.NewHTMLWriter(op.ReportDir, op.ThumbHeight, op.MaxWorkers)

	ctx := context.Background()
	leftIdx, rightIdx, err := eng.buildIndexes(ctx)
	require.NoError(t, err)

	results, err := eng.compareAll(ctx, []string{"a.png", "b.png", "c/d.png", "same.png"}, leftIdx, rightIdx)
	require.NoError(t, err)
	require.Len(t, results.outcomes, 4)

	for rel, outcome := range results.outcomes {
		require.NotNil(t, outcome.Comparison, rel)
		assert.Nil(t, outcome.Comparison.Diff, rel)
	}

	assert.Equal(t, map[string]string{
		"a.png":   "diff/a.png.png",
		"b.png":   "diff/b.png.png",
		"c/d.png": "diff/c/d.png.png",
	}, results.diffs)
	for _, p := range results.diffs {
		_, err := os.Stat(filepath.Join(op.ReportDir, filepath.FromSlash(p)))
		assert.NoError(t, err, p)
		_, err = os.Stat(filepath.Join(op.ReportDir, filepath.FromSlash(output.ThumbName(p))))
		assert.NoError(t, err, p)
	}

	t.Run("DiffWriteFailureIsFatal", func(t *testing.T) {
		blocker := filepath.Join(t.TempDir(), "file")
		require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

		op := h.Operation()
		op.ReportDir = filepath.Join(blocker, "out")
		_, _, err := h.Run(op, nil)
		assert.ErrorContains(t, err, "failed to write report")
	})
}

// keyBackend serves objects under their exact listed keys, like S3 does
type keyBackend struct {
	root    string
	objects map[string][]byte
}

func (b *keyBackend) List(ctx context.Context) ([]storage.FileInfo, error) {
	var files []storage.FileInfo
	for key, data := range b.objects {
		files = append(files, storage.FileInfo{Path: b.Location(key), RelativePath: key, Size: int64(len(data))})
	}
	return files, nil
}

func (b *keyBackend) Read(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := b.objects[key]
	if !ok {
		return nil, errors.New("no such key: " + key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (b *keyBackend) Stat(ctx context.Context, key string) (*storage.FileInfo, error) {
	return nil, errors.New("not implemented")
}

func (b *keyBackend) Location(key string) string { return b.root + "/" + key }
func (b *keyBackend) Root() string               { return b.root }
func (b *keyBackend) Close() error               { return nil }

func encodePNG(t *testing.T, w, h int, c color.Color) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestEngineReadsNonCanonicalKeys(t *testing.T) {
	left := &keyBackend{root: "s3://left", objects: map[string][]byte{
		"p//a.png":   encodePNG(t, 4, 4, color.White),
		"./same.png": encodePNG(t, 2, 2, color.White),
	}}
	right := &keyBackend{root: "s3://right", objects: map[string][]byte{
		"p/./a.png": encodePNG(t, 4, 4, color.Black),
		"same.png":  encodePNG(t, 2, 2, color.White),
	}}

	op := &models.DiffOperation{
		ID:          "keys",
		LeftPath:    left.root,
		RightPath:   right.root,
		Extensions:  models.DefaultImageExtensions,
		MaxWorkers:  2,
		RenderDiffs: true,
		ThumbHeight: 8,
		ReportDir:   filepath.Join(t.TempDir(), "out"),
	}

	eng := NewEngine(left, right, compare.NewPixelComparator(true), nil, nil, op)
	report, err := eng.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.StatusDifferent, report.Status)
	assert.Equal(t, 1, report.Stats.Different)
	assert.Equal(t, 1, report.Stats.Same)
	assert.Zero(t, report.Stats.Undetermined)

	_, err = os.Stat(filepath.Join(op.ReportDir, "a", "p", "a.png"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(op.ReportDir, "b", "p", "a.png"))
	assert.NoError(t, err)
}
