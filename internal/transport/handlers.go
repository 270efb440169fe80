package transport

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/nsheremet/zkpauth/internal/engine"
)

type handlers struct {
	engine  *engine.Engine
	timeout time.Duration
}

// peerKey returns the rate-limiting key for this request: the client's
// address without the port, so NAT/load-balanced clients sharing an
// address share a bucket. r.RemoteAddr is already the net/http-resolved
// peer; chi's RealIP middleware has already rewritten it from
// X-Forwarded-For/X-Real-IP where applicable.
func peerKey(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func requestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

type registerRequest struct {
	Username string `json:"username"`
	Y1       string `json:"y1"`
	Y2       string `json:"y2"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	requestID := getReqID(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_parameter", "malformed request body")
		return
	}
	y1, err := decodeHex(req.Y1)
	if err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_parameter", "invalid y1 encoding")
		return
	}
	y2, err := decodeHex(req.Y2)
	if err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_parameter", "invalid y2 encoding")
		return
	}

	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	if err := h.engine.Register(ctx, req.Username, peerKey(r), y1, y2); err != nil {
		writeEngineError(w, requestID, err)
		return
	}
	writeOK(w, requestID, map[string]string{"username": req.Username})
}

type createChallengeRequest struct {
	Username string `json:"username"`
	R1       string `json:"r1"`
	R2       string `json:"r2"`
}

type createChallengeResponse struct {
	AuthID string `json:"auth_id"`
	C      string `json:"c"`
}

func (h *handlers) createChallenge(w http.ResponseWriter, r *http.Request) {
	requestID := getReqID(r.Context())

	var req createChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_parameter", "malformed request body")
		return
	}
	r1, err := decodeHex(req.R1)
	if err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_parameter", "invalid r1 encoding")
		return
	}
	r2, err := decodeHex(req.R2)
	if err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_parameter", "invalid r2 encoding")
		return
	}

	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	res, err := h.engine.CreateChallenge(ctx, req.Username, peerKey(r), r1, r2)
	if err != nil {
		writeEngineError(w, requestID, err)
		return
	}
	writeOK(w, requestID, createChallengeResponse{
		AuthID: res.AuthID,
		C:      encodeHex(res.C),
	})
}

type verifyRequest struct {
	AuthID string `json:"auth_id"`
	S      string `json:"s"`
}

type verifyResponse struct {
	SessionToken string `json:"session_token"`
}

func (h *handlers) verify(w http.ResponseWriter, r *http.Request) {
	requestID := getReqID(r.Context())

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// A malformed body on the verify path must still surface as the
		// generic Unauthenticated response (spec.md section 7), not as a
		// more specific 400, to avoid distinguishing client mistakes
		// from protocol failures on this endpoint.
		writeError(w, requestID, http.StatusUnauthorized, "unauthenticated", "authentication failed")
		return
	}
	s, err := decodeHex(req.S)
	if err != nil {
		writeError(w, requestID, http.StatusUnauthorized, "unauthenticated", "authentication failed")
		return
	}

	ctx, cancel := requestContext(r, h.timeout)
	defer cancel()

	token, err := h.engine.Verify(ctx, req.AuthID, peerKey(r), s)
	if err != nil {
		writeEngineError(w, requestID, err)
		return
	}
	writeOK(w, requestID, verifyResponse{SessionToken: token})
}
