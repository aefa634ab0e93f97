package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaFileType_String(t *testing.T) {
	assert.Equal(t, "image", MediaFileTypeImage.String())
	assert.Equal(t, "video", MediaFileTypeVideo.String())
}

func TestMediaFileType_IsValid(t *testing.T) {
	assert.True(t, MediaFileTypeImage.IsValid())
	assert.True(t, MediaFileTypeVideo.IsValid())

	invalidType := MediaFileType("invalid")
	assert.False(t, invalidType.IsValid())
}

func TestMediaFileType_Plural(t *testing.T) {
	assert.Equal(t, "images", MediaFileTypeImage.Plural())
	assert.Equal(t, "videos", MediaFileTypeVideo.Plural())
}

func TestKindFromFilename(t *testing.T) {
	tests := []struct {
		filename string
		expected MediaFileType
	}{
		{"recipe.mp4", MediaFileTypeVideo},
		{"RECIPE.MP4", MediaFileTypeVideo},
		{"clip.avi", MediaFileTypeVideo},
		{"clip.Mov", MediaFileTypeVideo},
		{"photo.jpg", MediaFileTypeImage},
		{"photo.png", MediaFileTypeImage},
		{"movie.mkv", MediaFileTypeImage},
		{"mp4", MediaFileTypeImage},
		{"archive.mp4.zip", MediaFileTypeImage},
		{"", MediaFileTypeImage},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, KindFromFilename(tt.filename))
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		filename string
		expected string
	}{
		{"a.jpg", "image/jpeg"},
		{"a.JPEG", "image/jpeg"},
		{"a.png", "image/png"},
		{"a.gif", "image/gif"},
		{"a.mp4", "video/mp4"},
		{"a.mov", "video/quicktime"},
		{"a.webm", "video/webm"},
		{"noext", DefaultContentType},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContentTypeFor(tt.filename))
		})
	}
}
