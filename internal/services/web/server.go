package web

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/velo-events/site/internal/platform/assets/manifest"
	"github.com/velo-events/site/internal/platform/assets/resolve"
	"github.com/velo-events/site/internal/platform/timeouts"
)

// Config defines the inputs for the asset server.
type Config struct {
	HTTPAddr  string
	PublicDir string
	// Manifest is the loaded image manifest; it is not modified.
	Manifest manifest.Manifest
}

// Server hosts the asset HTTP server.
type Server struct {
	httpAddr   string
	httpServer *http.Server
}

// NewServer builds a configured asset server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	publicDir := strings.TrimSpace(config.PublicDir)
	if publicDir == "" {
		return nil, errors.New("public dir is required")
	}
	info, err := os.Stat(publicDir)
	if err != nil {
		return nil, fmt.Errorf("stat public dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("public dir %s is not a directory", publicDir)
	}

	httpServer := &http.Server{
		Addr:              httpAddr,
		Handler:           NewHandler(publicDir, resolve.New(config.Manifest)),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	return &Server{
		httpAddr:   httpAddr,
		httpServer: httpServer,
	}, nil
}

// ListenAndServe runs the HTTP server until the context ends.
//
// On cancellation, it performs a bounded shutdown so in-flight requests
// are drained before hard close.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("assets listening on %s", s.httpAddr)
	go func() {
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close stops the server immediately.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	if err := s.httpServer.Close(); err != nil {
		log.Printf("close asset server: %v", err)
	}
}
