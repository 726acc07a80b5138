package storage

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string][]byte) {
	t.Helper()
	for path, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(fullPath), 0755))
		require.NoError(t, os.WriteFile(fullPath, content, 0644))
	}
}

// TestNewLocal tests the Local backend constructor
func TestNewLocal(t *testing.T) {
	t.Run("ValidDirectory", func(t *testing.T) {
		local, err := NewLocal(t.TempDir())
		require.NoError(t, err)
		require.NotNil(t, local)
		defer local.Close()
	})

	t.Run("NonExistentPath", func(t *testing.T) {
		_, err := NewLocal(filepath.Join(t.TempDir(), "missing"))
		assert.Error(t, err)
	})

	t.Run("FileNotDirectory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file.png")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		_, err := NewLocal(file)
		assert.ErrorIs(t, err, ErrNotDirectory)
	})

	t.Run("RootIsAbsolute", func(t *testing.T) {
		tempDir := t.TempDir()
		oldWd, err := os.Getwd()
		require.NoError(t, err)
		require.NoError(t, os.Chdir(filepath.Dir(tempDir)))
		defer os.Chdir(oldWd)

		local, err := NewLocal(filepath.Base(tempDir))
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(local.Root()))
	})
}

func TestCreateLocal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")

	local, err := CreateLocal(dir)
	require.NoError(t, err)

	info, err := os.Stat(local.Root())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

// TestLocalList tests the List method
func TestLocalList(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string][]byte{
		"cat.png":          []byte("one"),
		"sub/dog.jpg":      []byte("two"),
		"sub/deep/owl.gif": []byte("three"),
	})

	local, err := NewLocal(tempDir)
	require.NoError(t, err)

	t.Run("ListAll", func(t *testing.T) {
		entries, err := local.List(context.Background())
		require.NoError(t, err)

		var files []string
		for _, e := range entries {
			if !e.IsDir {
				files = append(files, filepath.ToSlash(e.RelativePath))
			}
		}
		sort.Strings(files)
		assert.Equal(t, []string{"cat.png", "sub/deep/owl.gif", "sub/dog.jpg"}, files)
	})

	t.Run("SizesReported", func(t *testing.T) {
		entries, err := local.List(context.Background())
		require.NoError(t, err)
		for _, e := range entries {
			if filepath.ToSlash(e.RelativePath) == "sub/deep/owl.gif" {
				assert.Equal(t, int64(5), e.Size)
				return
			}
		}
		t.Fatal("owl.gif not listed")
	})

	t.Run("CancelledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := local.List(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestLocalListSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	tempDir := t.TempDir()
	outside := t.TempDir()
	writeTree(t, tempDir, map[string][]byte{"real.png": []byte("data")})
	writeTree(t, outside, map[string][]byte{"hidden.png": []byte("data")})

	require.NoError(t, os.Symlink(filepath.Join(tempDir, "real.png"), filepath.Join(tempDir, "link.png")))
	require.NoError(t, os.Symlink(outside, filepath.Join(tempDir, "linkdir")))

	local, err := NewLocal(tempDir)
	require.NoError(t, err)

	entries, err := local.List(context.Background())
	require.NoError(t, err)

	byPath := make(map[string]FileInfo)
	for _, e := range entries {
		byPath[filepath.ToSlash(e.RelativePath)] = e
	}

	require.Contains(t, byPath, "link.png")
	assert.False(t, byPath["link.png"].IsDir)
	assert.Equal(t, int64(4), byPath["link.png"].Size)

	require.Contains(t, byPath, "linkdir")
	assert.True(t, byPath["linkdir"].IsDir)
	assert.NotContains(t, byPath, "linkdir/hidden.png")
}

// TestLocalReadWrite tests Read and Write round trips
func TestLocalReadWrite(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("WriteCreatesParents", func(t *testing.T) {
		content := []byte("thumbnail bytes")
		require.NoError(t, local.Write(ctx, "a/nested/x.sm.jpg", bytes.NewReader(content), int64(len(content))))

		reader, err := local.Read(ctx, "a/nested/x.sm.jpg")
		require.NoError(t, err)
		defer reader.Close()

		got, err := io.ReadAll(reader)
		require.NoError(t, err)
		assert.Equal(t, content, got)
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		err := local.Write(ctx, "short.png", bytes.NewReader([]byte("abc")), 10)
		assert.ErrorContains(t, err, "incomplete write")
	})

	t.Run("UnknownSize", func(t *testing.T) {
		assert.NoError(t, local.Write(ctx, "any.png", bytes.NewReader([]byte("abc")), -1))
	})

	t.Run("ReadMissing", func(t *testing.T) {
		_, err := local.Read(ctx, "missing.png")
		assert.Error(t, err)
	})
}

func TestLocalStatAndMkdir(t *testing.T) {
	local, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, local.MkdirAll(ctx, "diff/sub"))

	info, err := local.Stat(ctx, "diff/sub")
	require.NoError(t, err)
	assert.True(t, info.IsDir)
	assert.Equal(t, "diff/sub", info.RelativePath)
	assert.Equal(t, filepath.Join(local.Root(), "diff", "sub"), info.Path)

	_, err = local.Stat(ctx, "nope")
	assert.Error(t, err)
}
