// Package index builds the relative-path view of one comparison root.
package index

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/sdejongh/imdirdiff/internal/platform"
	"github.com/sdejongh/imdirdiff/pkg/models"
	"github.com/sdejongh/imdirdiff/pkg/storage"
)

// PathIndex maps normalized relative paths to file entries for one root.
// It is immutable after Build returns.
type PathIndex struct {
	root    string
	entries map[string]models.FileEntry
	keys    []string
}

// TraversalError is returned when a root cannot be walked or yields a path
// that would escape it. It is always fatal for the run.
type TraversalError struct {
	Root string
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("traversal of %s failed at %s: %v", e.Root, e.Path, e.Err)
	}
	return fmt.Sprintf("traversal of %s failed: %v", e.Root, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// Build walks the backend and indexes every accepted image file.
// A nil filter means the default image extensions with no excludes.
func Build(ctx context.Context, backend storage.Backend, filter *Filter) (*PathIndex, error) {
	if filter == nil {
		filter = DefaultFilter()
	}

	files, err := backend.List(ctx)
	if err != nil {
		return nil, &TraversalError{Root: backend.Root(), Err: err}
	}

	normalized := make([]listed, 0, len(files))
	ignoreSource := ""
	for _, f := range files {
		rel, err := platform.NormalizeRelative(f.RelativePath)
		if err != nil {
			return nil, &TraversalError{Root: backend.Root(), Path: f.RelativePath, Err: err}
		}
		if f.IsDir {
			continue
		}
		source := f.RelativePath
		f.RelativePath = rel
		normalized = append(normalized, listed{FileInfo: f, source: source})
		if rel == IgnoreFileName {
			ignoreSource = source
		}
	}

	active := filter.withoutIgnore()
	if ignoreSource != "" {
		if err := loadIgnore(ctx, backend, ignoreSource, active); err != nil {
			return nil, &TraversalError{Root: backend.Root(), Path: IgnoreFileName, Err: err}
		}
	}

	idx := &PathIndex{
		root:    backend.Root(),
		entries: make(map[string]models.FileEntry),
	}

	for _, f := range normalized {
		if !active.Accept(f.RelativePath) {
			continue
		}
		if _, dup := idx.entries[f.RelativePath]; dup {
			return nil, &TraversalError{Root: idx.root, Path: f.RelativePath, Err: errors.New("duplicate relative path")}
		}
		idx.entries[f.RelativePath] = models.FileEntry{
			RelativePath: f.RelativePath,
			AbsolutePath: f.Path,
			SourcePath:   f.source,
			Size:         f.Size,
			ModTime:      f.ModTime,
		}
	}

	idx.keys = lo.Keys(idx.entries)
	sort.Strings(idx.keys)

	return idx, nil
}

// listed is a backend listing entry with its normalized relative path and
// the path the backend reported
type listed struct {
	storage.FileInfo
	source string
}

func loadIgnore(ctx context.Context, backend storage.Backend, source string, filter *Filter) error {
	reader, err := backend.Read(ctx, source)
	if err != nil {
		return err
	}
	defer reader.Close()

	_, err = filter.LoadIgnore(reader)
	return err
}

// Keys returns all relative paths in lexicographic order
func (p *PathIndex) Keys() []string {
	out := make([]string, len(p.keys))
	copy(out, p.keys)
	return out
}

// Lookup returns the entry for a relative path
func (p *PathIndex) Lookup(rel string) (models.FileEntry, bool) {
	e, ok := p.entries[rel]
	return e, ok
}

// Source returns the path to read rel from on the backend. It is rel itself
// unless the listing held a non-canonical form of it.
func (p *PathIndex) Source(rel string) string {
	if e, ok := p.entries[rel]; ok && e.SourcePath != "" {
		return e.SourcePath
	}
	return rel
}

// Len returns the number of indexed files
func (p *PathIndex) Len() int {
	return len(p.entries)
}

// Root returns the root the index was built from
func (p *PathIndex) Root() string {
	return p.root
}
