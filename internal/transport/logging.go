package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/nsheremet/zkpauth/internal/logger"
)

// requestLogger logs one line per request with the correlation ID the
// requestID middleware attached, following
// marmos91-dittofs/pkg/api/router.go's requestLogger shape but over
// internal/logger instead of a direct slog handler.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		requestID := getReqID(r.Context())

		ctx := logger.WithContext(r.Context(), &logger.LogContext{
			RequestID: requestID,
			Peer:      logger.HashPeer(r.RemoteAddr),
		})
		r = r.WithContext(ctx)

		next.ServeHTTP(ww, r)

		logger.Info(ctx, "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
