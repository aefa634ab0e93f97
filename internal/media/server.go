package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"cookinghub/internal/blob"
	"cookinghub/internal/common"
	"cookinghub/internal/config"
)

const shutdownTimeout = 30 * time.Second

// FileOpener is satisfied by query.Service.
type FileOpener interface {
	OpenFile(ctx context.Context, id blob.ID) (io.ReadCloser, *blob.Info, error)
}

type HTTPServer struct {
	log    *zap.Logger
	files  FileOpener
	router *mux.Router
}

func NewHTTPServer(log *zap.Logger, files FileOpener) *HTTPServer {
	s := &HTTPServer{
		log:    log,
		files:  files,
		router: mux.NewRouter(),
	}

	// Main endpoint: GET /media/{fileId}
	s.router.HandleFunc("/media/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)
	// Links rendered by older pages
	s.router.HandleFunc("/file/{fileId}", s.serveFile).Methods(http.MethodGet, http.MethodHead)

	// Health check
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)

	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context, cfg config.ServerConfig) error {
	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s,
		ReadTimeout:    time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Media server starting",
			zap.String("addr", server.Addr),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down media server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func (s *HTTPServer) serveFile(w http.ResponseWriter, r *http.Request) {
	fileID := mux.Vars(r)["fileId"]

	reader, info, err := s.files.OpenFile(r.Context(), blob.ID(fileID))
	if errors.Is(err, blob.ErrNotFound) {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	} else if err != nil {
		s.log.Error("Failed to open file", zap.String("file_id", fileID), zap.Error(err))
		http.Error(w, "Failed to read file", http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = common.ContentTypeFor(info.Filename)
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))

	if r.Method == http.MethodHead {
		return
	}

	// Stream file directly to response
	if _, err := io.Copy(w, reader); err != nil {
		s.log.Warn("Error streaming file", zap.String("file_id", fileID), zap.Error(err))
	}
}

func (s *HTTPServer) health(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Media server is healthy"))
}
