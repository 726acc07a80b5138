package index

import (
	"bufio"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/samber/lo"

	"github.com/sdejongh/imdirdiff/internal/platform"
	"github.com/sdejongh/imdirdiff/pkg/models"
)

// IgnoreFileName is read from the root of each tree when present
const IgnoreFileName = ".imdirdiffignore"

// Filter decides which listed files enter a PathIndex
type Filter struct {
	extensions []string
	excludes   []string
	ignore     *gitignore.GitIgnore
}

// NewFilter creates a filter for the given extensions and exclude globs.
// Extensions are matched case-insensitively with or without a leading dot.
// Patterns support:
//   - basename globs: *.tmp, thumb_*
//   - directory patterns: raw/, .cache/
//   - path globs with any depth: export/**, **/drafts/*.png
func NewFilter(extensions, excludes []string) (*Filter, error) {
	if len(extensions) == 0 {
		extensions = models.DefaultImageExtensions
	}

	for _, pattern := range excludes {
		if !doublestar.ValidatePattern(strings.TrimSuffix(pattern, "/")) {
			return nil, &models.ValidationError{Field: "exclude", Message: "invalid pattern '" + pattern + "'"}
		}
	}

	return &Filter{
		extensions: lo.Uniq(lo.Map(extensions, func(ext string, _ int) string {
			return strings.ToLower(strings.TrimPrefix(ext, "."))
		})),
		excludes: lo.Filter(excludes, func(p string, _ int) bool { return p != "" }),
	}, nil
}

// DefaultFilter returns a filter for the default image extensions with no excludes
func DefaultFilter() *Filter {
	f, _ := NewFilter(nil, nil)
	return f
}

// LoadIgnore compiles gitignore-style rules read from r
func (f *Filter) LoadIgnore(r io.Reader) (int, error) {
	var lines []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	f.ignore = gitignore.CompileIgnoreLines(lines...)
	return len(lines), nil
}

// withoutIgnore returns a copy sharing patterns but no ignore rules.
// Ignore rules belong to a single root.
func (f *Filter) withoutIgnore() *Filter {
	return &Filter{extensions: f.extensions, excludes: f.excludes}
}

// Extensions returns the accepted extensions
func (f *Filter) Extensions() []string {
	return f.extensions
}

// Accept reports whether a normalized relative path is indexed
func (f *Filter) Accept(rel string) bool {
	if !lo.Contains(f.extensions, platform.Ext(rel)) {
		return false
	}
	if f.excluded(rel) {
		return false
	}
	if f.ignore != nil && f.ignore.MatchesPath(rel) {
		return false
	}
	return true
}

func (f *Filter) excluded(rel string) bool {
	base := rel[strings.LastIndex(rel, "/")+1:]

	for _, pattern := range f.excludes {
		// Directory pattern: anything beneath a directory of that name
		if dir, ok := strings.CutSuffix(pattern, "/"); ok {
			if match(dir+"/**", rel) || match("**/"+dir+"/**", rel) {
				return true
			}
			continue
		}

		// Patterns without a separator apply to the basename only
		if !strings.Contains(pattern, "/") {
			if match(pattern, base) {
				return true
			}
			continue
		}

		if match(pattern, rel) {
			return true
		}
	}

	return false
}

func match(pattern, name string) bool {
	ok, _ := doublestar.Match(pattern, name)
	return ok
}
