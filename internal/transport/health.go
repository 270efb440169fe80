package transport

import (
	"net/http"
	"time"
)

// healthzHandler reports process uptime and the configured group's
// fingerprint (see internal/logger.GroupFingerprint), nothing about
// users or sessions. Not named in spec.md, but every HTTP service in
// the pack carries a liveness route; see
// marmos91-dittofs/pkg/api/handlers/health.go.
func healthzHandler(fingerprint string, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := getReqID(r.Context())
		writeOK(w, requestID, map[string]interface{}{
			"uptime_seconds":    int64(time.Since(startedAt).Seconds()),
			"group_fingerprint": fingerprint,
		})
	}
}
