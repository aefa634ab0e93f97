package tests

import (
	"bytes"
	"context"
	"crypto/rand"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cookinghub/internal/blob"
	"cookinghub/internal/common"
)

func RunStoreTests(t *testing.T, s blob.Store, teardown func()) {
	for _, tf := range []func(t *testing.T, s blob.Store){
		testRoundTrip,
		testNotFound,
		testDelete,
		testValidation,
		testCancelledPut,
		testConcurrentPuts,
	} {
		tf(t, s)
		teardown()
	}
}

func readAll(t *testing.T, s blob.Store, id blob.ID) ([]byte, *blob.Info) {
	t.Helper()

	rc, info, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	return data, info
}

func testRoundTrip(t *testing.T, s blob.Store) {
	ctx := context.Background()

	large := make([]byte, 600*1024) // spans several GridFS chunks
	_, err := rand.Read(large)
	require.NoError(t, err)

	for _, tc := range []struct {
		name        string
		data        []byte
		filename    string
		contentType string
		expectedCT  string
	}{
		{"image", []byte("\x89PNG fake"), "cake.png", "image/png", "image/png"},
		{"video", large, "recipe.mp4", "video/mp4", "video/mp4"},
		{"empty", []byte{}, "empty.txt", "text/plain", "text/plain"},
		{"no content type", []byte("raw"), "raw.bin", "", common.DefaultContentType},
	} {
		info, err := s.Put(ctx, bytes.NewReader(tc.data), tc.filename, tc.contentType)
		require.NoError(t, err, tc.name)
		require.NotEmpty(t, info.ID, tc.name)
		assert.Equal(t, tc.filename, info.Filename, tc.name)
		assert.Equal(t, int64(len(tc.data)), info.Size, tc.name)
		assert.Equal(t, tc.expectedCT, info.ContentType, tc.name)

		data, got := readAll(t, s, info.ID)
		assert.True(t, bytes.Equal(tc.data, data), tc.name)
		assert.Equal(t, info.ID, got.ID, tc.name)
		assert.Equal(t, tc.filename, got.Filename, tc.name)
		assert.Equal(t, tc.expectedCT, got.ContentType, tc.name)
		assert.Equal(t, int64(len(tc.data)), got.Size, tc.name)

		// reads are repeatable
		again, _ := readAll(t, s, info.ID)
		assert.True(t, bytes.Equal(tc.data, again), tc.name)
	}

	// same content twice yields two blobs
	a, err := s.Put(ctx, bytes.NewReader([]byte("dup")), "a.jpg", "image/jpeg")
	require.NoError(t, err)
	b, err := s.Put(ctx, bytes.NewReader([]byte("dup")), "a.jpg", "image/jpeg")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
}

func testNotFound(t *testing.T, s blob.Store) {
	ctx := context.Background()

	for _, id := range []blob.ID{"", "nope", "../../etc/passwd", "65f1c0a2b3c4d5e6f7a8b9c0"} {
		rc, info, err := s.Get(ctx, id)
		assert.ErrorIs(t, err, blob.ErrNotFound, "id %q", id)
		assert.Nil(t, rc)
		assert.Nil(t, info)
	}
}

func testDelete(t *testing.T, s blob.Store) {
	ctx := context.Background()

	keep, err := s.Put(ctx, bytes.NewReader([]byte("keep")), "keep.jpg", "image/jpeg")
	require.NoError(t, err)
	drop, err := s.Put(ctx, bytes.NewReader([]byte("drop")), "drop.jpg", "image/jpeg")
	require.NoError(t, err)

	deleted, err := s.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, _, err = s.Get(ctx, drop.ID)
	assert.ErrorIs(t, err, blob.ErrNotFound)

	// idempotent
	deleted, err = s.Delete(ctx, drop.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	deleted, err = s.Delete(ctx, "not-an-id")
	require.NoError(t, err)
	assert.False(t, deleted)

	data, _ := readAll(t, s, keep.ID)
	assert.Equal(t, "keep", string(data))
}

func testValidation(t *testing.T, s blob.Store) {
	ctx := context.Background()

	for _, name := range []string{"", "  ", "../secret.jpg", "dir/file.jpg", ".."} {
		info, err := s.Put(ctx, bytes.NewReader([]byte("x")), name, "image/jpeg")
		assert.ErrorIs(t, err, common.ErrValidation, "filename %q", name)
		assert.Nil(t, info)
	}

	info, err := s.Put(ctx, bytes.NewReader([]byte("x")), "  spaced.jpg  ", "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "spaced.jpg", info.Filename)
}

func testCancelledPut(t *testing.T, s blob.Store) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	info, err := s.Put(ctx, bytes.NewReader([]byte("never")), "never.jpg", "image/jpeg")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, common.ErrStorageFault)
	assert.Nil(t, info)
}

func testConcurrentPuts(t *testing.T, s blob.Store) {
	ctx := context.Background()

	const workers = 8
	ids := make([]blob.ID, workers)
	payloads := make([][]byte, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		payloads[i] = bytes.Repeat([]byte{byte('a' + i)}, 1024*(i+1))

		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			info, err := s.Put(ctx, bytes.NewReader(payloads[i]), "part.bin", "application/octet-stream")
			if assert.NoError(t, err) {
				ids[i] = info.ID
			}
		}(i)
	}
	wg.Wait()

	seen := map[blob.ID]bool{}
	for i, id := range ids {
		require.NotEmpty(t, id)
		assert.False(t, seen[id])
		seen[id] = true

		data, _ := readAll(t, s, id)
		assert.True(t, bytes.Equal(payloads[i], data))
	}
}
