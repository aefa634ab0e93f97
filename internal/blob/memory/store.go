package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"cookinghub/internal/blob"
	"cookinghub/internal/common"
)

type entry struct {
	info blob.Info
	data []byte
}

type memory struct {
	sync.RWMutex

	blobs map[blob.ID]*entry
}

func NewInMemory() blob.Store {
	return &memory{
		blobs: make(map[blob.ID]*entry),
	}
}

func (m *memory) reset() {
	m.Lock()
	defer m.Unlock()

	m.blobs = make(map[blob.ID]*entry)
}

func (m *memory) Put(ctx context.Context, r io.Reader, filename, contentType string) (*blob.Info, error) {
	name, contentType, err := blob.PrepareUpload(filename, contentType)
	if err != nil {
		return nil, err
	}

	// read outside the lock; uploads must not stall readers
	data, err := io.ReadAll(blob.NewContextReader(ctx, r))
	if err != nil {
		return nil, common.Fault("put blob", errors.Wrap(err, "failed to read blob content"))
	}

	e := &entry{
		info: blob.Info{
			ID:          blob.ID(uuid.NewString()),
			Filename:    name,
			ContentType: contentType,
			Size:        int64(len(data)),
			UploadedAt:  time.Now().UTC(),
		},
		data: data,
	}

	m.Lock()
	m.blobs[e.info.ID] = e
	m.Unlock()

	info := e.info
	return &info, nil
}

func (m *memory) Get(_ context.Context, id blob.ID) (io.ReadCloser, *blob.Info, error) {
	m.RLock()
	e, ok := m.blobs[id]
	m.RUnlock()

	if !ok {
		return nil, nil, blob.ErrNotFound
	}

	info := e.info
	return io.NopCloser(bytes.NewReader(e.data)), &info, nil
}

func (m *memory) Delete(_ context.Context, id blob.ID) (bool, error) {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.blobs[id]; !ok {
		return false, nil
	}
	delete(m.blobs, id)
	return true, nil
}
