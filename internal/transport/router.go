package transport

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nsheremet/zkpauth/internal/engine"
)

// NewRouter builds the chi router exposing the three protocol
// operations (spec.md section 6) plus a liveness probe. Grounded on
// marmos91-dittofs/pkg/api/router.go's middleware stack ordering:
// RequestID, RealIP, request logging, panic recovery, then a
// process-wide timeout as a backstop above the per-request deadline
// each handler applies from config.
func NewRouter(e *engine.Engine, requestTimeout time.Duration, fingerprint string, startedAt time.Time, maxConcurrentStreams int) http.Handler {
	r := chi.NewRouter()

	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout + 5*time.Second))
	if maxConcurrentStreams > 0 {
		r.Use(middleware.Throttle(maxConcurrentStreams))
	}

	h := &handlers{engine: e, timeout: requestTimeout}

	r.Get("/healthz", healthzHandler(fingerprint, startedAt))

	r.Route("/v1", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/challenges", h.createChallenge)
		r.Post("/verify", h.verify)
	})

	return r
}
