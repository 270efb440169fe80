// Package transport implements the HTTP/JSON RPC boundary adapter: the
// wire-level request/response shapes, hex encoding of the protocol's
// big-endian integers, and the chi router and handlers that translate
// between them and internal/engine.
//
// Grounded on marmos91-dittofs/pkg/api (router.go's middleware stack,
// response.go's JSON envelope, server.go's Start/Stop graceful shutdown
// pair), generalized from its registry/identity domain to this one.
package transport

import (
	"encoding/hex"
	"fmt"
)

// decodeHex turns a hex string from a request body into raw bytes. An
// empty string decodes to an empty (zero-length) slice rather than an
// error; the engine's value decoders then reject it as empty input.
func decodeHex(s string) ([]byte, error) {
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("transport: invalid hex encoding: %w", err)
	}
	return b, nil
}

// encodeHex renders raw bytes as a lowercase hex string for a response
// body.
func encodeHex(b []byte) string {
	return hex.EncodeToString(b)
}
