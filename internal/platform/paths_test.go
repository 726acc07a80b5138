package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRelative(t *testing.T) {
	valid := []struct {
		in, want string
	}{
		{"a.png", "a.png"},
		{"c/recursive.png", "c/recursive.png"},
		{"./c//x.png", "c/x.png"},
		{"c/./d/x.png", "c/d/x.png"},
	}
	for _, tt := range valid {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeRelative(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []struct {
		name, in, msg string
	}{
		{"Empty", "", "path is empty"},
		{"Absolute", "/etc/x.png", "path is absolute"},
		{"Escape", "../x.png", "path escapes root"},
		{"InnerEscape", "a/../../x.png", "path escapes root"},
		{"DotDotInside", "a/../x.png", "path escapes root"},
		{"Root", ".", "path refers to the root"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeRelative(tt.in)
			var perr *PathError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.msg, perr.Message)
		})
	}

	t.Run("BackslashOnWindows", func(t *testing.T) {
		if runtime.GOOS != "windows" {
			t.Skip("backslash is a valid name character outside windows")
		}
		got, err := NormalizeRelative(`c\x.png`)
		require.NoError(t, err)
		assert.Equal(t, "c/x.png", got)
	})
}

func TestParseS3URI(t *testing.T) {
	tests := []struct {
		uri, bucket, prefix string
	}{
		{"s3://photos", "photos", ""},
		{"s3://photos/", "photos", ""},
		{"s3://photos/2024/raw/", "photos", "2024/raw"},
	}
	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			bucket, prefix, err := ParseS3URI(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.prefix, prefix)
		})
	}

	_, _, err := ParseS3URI("s3://")
	assert.ErrorContains(t, err, "bucket name is empty")

	_, _, err = ParseS3URI("/local/dir")
	assert.ErrorContains(t, err, "not an s3:// URI")
}

func TestExtAndValidateRoot(t *testing.T) {
	assert.Equal(t, "png", Ext("a/B.PNG"))
	assert.Equal(t, "jpeg", Ext("x.tar.jpeg"))
	assert.Equal(t, "", Ext("noext"))

	assert.True(t, IsS3URI("s3://b/p"))
	assert.False(t, IsS3URI("./s3"))

	assert.Error(t, ValidateRoot(""))
	assert.Error(t, ValidateRoot("s3://"))
	assert.NoError(t, ValidateRoot("s3://bucket/prefix"))
	assert.NoError(t, ValidateRoot("/does/not/matter"))
}
