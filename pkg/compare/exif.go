package compare

import (
	"bytes"
	"sort"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"
)

// ExtractExif returns a flat map of EXIF tag names to their string values.
// Files without EXIF data yield nil.
func ExtractExif(data []byte) map[string]string {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	out := make(map[string]string)
	_ = x.Walk(exifWalker{m: out})
	if len(out) == 0 {
		return nil
	}
	return out
}

type exifWalker struct{ m map[string]string }

func (w exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	w.m[string(name)] = tag.String()
	return nil
}

// ExifChanges lists, in sorted order, the tags that are missing on one side
// or carry different values
func ExifChanges(left, right []byte) []string {
	l := ExtractExif(left)
	r := ExtractExif(right)

	var changed []string
	for name, lv := range l {
		if rv, ok := r[name]; !ok || rv != lv {
			changed = append(changed, name)
		}
	}
	for name := range r {
		if _, ok := l[name]; !ok {
			changed = append(changed, name)
		}
	}

	sort.Strings(changed)
	return changed
}
