package media

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cookinghub/internal/blob"
	blobmemory "cookinghub/internal/blob/memory"
	"cookinghub/internal/common"
	"cookinghub/internal/config"
)

type storeOpener struct {
	store blob.Store
}

func (o storeOpener) OpenFile(ctx context.Context, id blob.ID) (io.ReadCloser, *blob.Info, error) {
	return o.store.Get(ctx, id)
}

// untypedOpener serves files stored before content types were recorded.
type untypedOpener struct{}

func (untypedOpener) OpenFile(_ context.Context, id blob.ID) (io.ReadCloser, *blob.Info, error) {
	return io.NopCloser(strings.NewReader("png bytes")), &blob.Info{ID: id, Filename: "cake.png", Size: 9}, nil
}

type failingOpener struct{}

func (failingOpener) OpenFile(context.Context, blob.ID) (io.ReadCloser, *blob.Info, error) {
	return nil, nil, common.Fault("get blob", errors.New("server selection timeout"))
}

func TestHTTPServer_ServeFile(t *testing.T) {
	ctx := context.Background()
	store := blobmemory.NewInMemory()

	video, err := store.Put(ctx, strings.NewReader("video bytes"), "recipe.mp4", "video/mp4")
	require.NoError(t, err)
	opaque, err := store.Put(ctx, strings.NewReader("png bytes"), "cake.png", "")
	require.NoError(t, err)

	server := NewHTTPServer(zap.NewNop(), storeOpener{store: store})

	tests := []struct {
		name        string
		path        string
		status      int
		contentType string
		body        string
	}{
		{"stored content type", "/media/" + video.ID.String(), http.StatusOK, "video/mp4", "video bytes"},
		{"stored octet-stream kept", "/media/" + opaque.ID.String(), http.StatusOK, common.DefaultContentType, "png bytes"},
		{"file alias", "/file/" + video.ID.String(), http.StatusOK, "video/mp4", "video bytes"},
		{"missing file", "/media/does-not-exist", http.StatusNotFound, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			if tt.status != http.StatusOK {
				return
			}
			assert.Equal(t, tt.contentType, rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, rec.Body.String())
			assert.Equal(t, strconv.Itoa(len(tt.body)), rec.Header().Get("Content-Length"))
		})
	}
}

func TestHTTPServer_ExtensionFallback(t *testing.T) {
	server := NewHTTPServer(zap.NewNop(), untypedOpener{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/legacy", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png bytes", rec.Body.String())
}

func TestHTTPServer_Head(t *testing.T) {
	ctx := context.Background()
	store := blobmemory.NewInMemory()
	info, err := store.Put(ctx, strings.NewReader("12345"), "clip.mov", "video/quicktime")
	require.NoError(t, err)

	server := NewHTTPServer(zap.NewNop(), storeOpener{store: store})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/media/"+info.ID.String(), nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.Empty(t, rec.Body.String())
}

func TestHTTPServer_StorageFault(t *testing.T) {
	server := NewHTTPServer(zap.NewNop(), failingOpener{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/abc", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHTTPServer_Health(t *testing.T) {
	server := NewHTTPServer(zap.NewNop(), failingOpener{})

	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = httptest.NewRecorder()
	server.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/media/abc", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHTTPServer_RunStopsOnCancel(t *testing.T) {
	server := NewHTTPServer(zap.NewNop(), failingOpener{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- server.Run(ctx, config.ServerConfig{Host: "127.0.0.1", Port: "0", ReadTimeout: 5, WriteTimeout: 5})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
