package transport

import (
	"net/http"

	"github.com/nsheremet/zkpauth/internal/engine"
)

// statusFor maps an engine.Kind onto an HTTP status code and a stable
// body code, per spec.md section 7's error table. KindChallengeInvalid
// collapses every verify-path failure (unknown/expired/consumed
// auth_id, arithmetic mismatch) into the same Unauthenticated response;
// handlers must never branch on the underlying cause before calling
// this.
func statusFor(kind engine.Kind) (status int, code string) {
	switch kind {
	case engine.KindInvalidParameter:
		return http.StatusBadRequest, "invalid_parameter"
	case engine.KindAlreadyRegistered:
		return http.StatusConflict, "already_registered"
	case engine.KindUserNotFound:
		return http.StatusNotFound, "user_not_found"
	case engine.KindChallengeInvalid:
		return http.StatusUnauthorized, "unauthenticated"
	case engine.KindRateLimited:
		return http.StatusTooManyRequests, "rate_limited"
	case engine.KindResourceExhausted:
		return http.StatusTooManyRequests, "resource_exhausted"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// writeEngineError renders err (expected to be an *engine.Error) as the
// appropriate HTTP response. A non-engine error is treated as internal:
// arithmetic panics and similar invariant violations must never leak
// details to the client (spec.md section 7's propagation policy).
func writeEngineError(w http.ResponseWriter, requestID string, err error) {
	ee, ok := engine.As(err)
	if !ok {
		writeError(w, requestID, http.StatusInternalServerError, "internal", "internal error")
		return
	}
	status, code := statusFor(ee.Kind)
	message := ee.Message
	if ee.Kind == engine.KindChallengeInvalid {
		// Never let a per-call message vary by failure sub-case; the
		// engine already uses one literal string for all of these, but
		// pin it here too so a future engine change can't reintroduce
		// an oracle at the transport boundary.
		message = "authentication failed"
	}
	writeError(w, requestID, status, code, message)
}
