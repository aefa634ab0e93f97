// Package blob stores immutable binary objects (uploaded images, videos and
// profile pictures) under ids issued at creation.
package blob

import (
	"context"
	"io"
	"strings"
	"time"

	"cookinghub/internal/common"
)

// ID is opaque to callers. The GridFS backend issues hex ObjectIDs, the
// memory backend UUIDs.
type ID string

func (id ID) String() string {
	return string(id)
}

var ErrNotFound = common.ErrNotFound

type Info struct {
	ID          ID
	Filename    string
	ContentType string
	Size        int64
	UploadedAt  time.Time
}

type Store interface {
	// Put stores everything read from r under a new ID. Nothing is visible
	// to Get until Put has returned successfully; a failed or cancelled Put
	// leaves nothing behind.
	Put(ctx context.Context, r io.Reader, filename, contentType string) (*Info, error)

	// Get opens a stream over a stored blob. The caller must close it.
	//
	// ErrNotFound is returned for unknown, deleted or malformed ids.
	Get(ctx context.Context, id ID) (io.ReadCloser, *Info, error)

	// Delete removes a blob. It reports false, without an error, when the
	// id is unknown or already deleted.
	Delete(ctx context.Context, id ID) (bool, error)
}

// PrepareUpload validates the filename and settles the content type every
// backend stores.
func PrepareUpload(filename, contentType string) (string, string, error) {
	name, err := common.SanitizeFilename(filename)
	if err != nil {
		return "", "", err
	}

	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = common.DefaultContentType
	}
	return name, contentType, nil
}

type contextReader struct {
	ctx context.Context
	r   io.Reader
}

// NewContextReader fails reads with ctx.Err() once ctx is done, so a copy
// of a long upload stops at the next chunk.
func NewContextReader(ctx context.Context, r io.Reader) io.Reader {
	return &contextReader{ctx: ctx, r: r}
}

func (c *contextReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
