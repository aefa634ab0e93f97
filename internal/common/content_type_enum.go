package common

import (
	"mime"
	"path/filepath"
	"strings"
)

// MediaFileType is the kind of a media item owned by a user.
type MediaFileType string

const (
	MediaFileTypeImage MediaFileType = "image"
	MediaFileTypeVideo MediaFileType = "video"
)

const DefaultContentType = "application/octet-stream"

var videoExtensions = map[string]bool{
	".mp4": true,
	".avi": true,
	".mov": true,
}

// String returns the string representation
func (mft MediaFileType) String() string {
	return string(mft)
}

// IsValid reports whether mft is one of the kinds a user can own.
func (mft MediaFileType) IsValid() bool {
	return mft == MediaFileTypeImage || mft == MediaFileTypeVideo
}

// Plural is the name of the per-user list holding items of this kind.
func (mft MediaFileType) Plural() string {
	if mft == MediaFileTypeVideo {
		return "videos"
	}
	return "images"
}

// KindFromFilename classifies an upload: mp4, avi and mov (any case) are
// videos, everything else is an image.
func KindFromFilename(filename string) MediaFileType {
	if videoExtensions[strings.ToLower(filepath.Ext(filename))] {
		return MediaFileTypeVideo
	}
	return MediaFileTypeImage
}

// ContentTypeFor guesses a MIME type from the filename extension.
func ContentTypeFor(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".avi":
		return "video/x-msvideo"
	case ".webm":
		return "video/webm"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return DefaultContentType
}
