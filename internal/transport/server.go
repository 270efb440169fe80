package transport

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nsheremet/zkpauth/internal/engine"
	"github.com/nsheremet/zkpauth/internal/logger"
)

// Server wraps an http.Server configured with the protocol router.
// Grounded on marmos91-dittofs/pkg/api/server.go's Start(ctx)/Stop(ctx)
// graceful-shutdown pair.
type Server struct {
	httpServer   *http.Server
	shutdownOnce sync.Once
}

// NewServer builds a Server bound to addr, backed by e, with the given
// per-request timeout and group fingerprint (surfaced on /healthz).
func NewServer(addr string, e *engine.Engine, requestTimeout time.Duration, fingerprint string, maxConcurrentStreams int) *Server {
	startedAt := time.Now()
	router := NewRouter(e, requestTimeout, fingerprint, startedAt, maxConcurrentStreams)

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  requestTimeout + 5*time.Second,
			WriteTimeout: requestTimeout + 5*time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Start serves until ctx is cancelled, then performs a graceful
// shutdown bounded by a fixed grace period and returns.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "transport server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Stop(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("transport: server failed: %w", err)
	}
}

// Stop initiates graceful shutdown. Safe to call more than once and
// concurrently with Start.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("transport: shutdown error: %w", err)
		}
	})
	return shutdownErr
}
