package platform

import (
	"path"
	"path/filepath"
	"strings"
)

// S3Scheme is the URI prefix for S3-backed roots
const S3Scheme = "s3://"

// NormalizeRelative converts a backend-relative path into the form used as
// the join key between two roots: slash-separated, cleaned, never absolute
// and never escaping the root.
func NormalizeRelative(rel string) (string, error) {
	if rel == "" {
		return "", &PathError{Path: rel, Message: "path is empty"}
	}

	slashed := filepath.ToSlash(rel)
	if path.IsAbs(slashed) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" {
		return "", &PathError{Path: rel, Message: "path is absolute"}
	}

	for _, segment := range strings.Split(slashed, "/") {
		if segment == ".." {
			return "", &PathError{Path: rel, Message: "path escapes root"}
		}
	}

	cleaned := path.Clean(slashed)
	if cleaned == "." {
		return "", &PathError{Path: rel, Message: "path refers to the root"}
	}

	return cleaned, nil
}

// IsS3URI checks if a root refers to an S3 bucket
func IsS3URI(root string) bool {
	return strings.HasPrefix(root, S3Scheme)
}

// ParseS3URI splits s3://bucket/prefix into bucket and prefix.
// The prefix never has leading or trailing slashes.
func ParseS3URI(uri string) (bucket, prefix string, err error) {
	if !IsS3URI(uri) {
		return "", "", &PathError{Path: uri, Message: "not an s3:// URI"}
	}

	trimmed := strings.TrimPrefix(uri, S3Scheme)
	bucket, prefix, _ = strings.Cut(trimmed, "/")
	if bucket == "" {
		return "", "", &PathError{Path: uri, Message: "bucket name is empty"}
	}

	return bucket, strings.Trim(prefix, "/"), nil
}

// Ext returns the lowercase file extension without the leading dot
func Ext(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// ValidateRoot checks if a root argument is usable before any I/O
func ValidateRoot(root string) error {
	if root == "" {
		return &PathError{Path: root, Message: "path is empty"}
	}
	if IsS3URI(root) {
		_, _, err := ParseS3URI(root)
		return err
	}
	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
