package commands

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/nsheremet/zkpauth/internal/group"
)

// deriveSecret maps a username and password deterministically into a
// nonzero scalar in [1, q). This derivation is a CLI ergonomic concern
// the core protocol deliberately has no opinion about (the server never
// sees the password or x); a real client would use a slow memory-hard
// KDF (scrypt/argon2) here instead of a single blake2b pass.
func deriveSecret(params *group.Params, user, password string) *big.Int {
	h := blake2b.Sum256([]byte(user + "\x00" + password))
	x := new(big.Int).SetBytes(h[:])
	x.Mod(x, new(big.Int).Sub(params.Q, big.NewInt(1)))
	x.Add(x, big.NewInt(1))
	return x
}

// apiClient is a thin HTTP client for the three zkpauthd RPCs, grounded
// on Tomsons-go-srp/srp.go's Client type (NewClient/Credentials/Generate
// round trip), generalized from SRP's single commit/response exchange
// to register/createChallenge/verify over JSON instead of a colon-joined
// wire format.
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type apiEnvelope struct {
	Status string          `json:"status"`
	Data   json.RawMessage `json:"data"`
	Error  *apiError       `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (c *apiClient) post(path string, req, resp interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("zkpauthctl: encode request: %w", err)
	}

	httpResp, err := c.http.Post(c.baseURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("zkpauthctl: request to %s failed: %w", path, err)
	}
	defer httpResp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(httpResp.Body).Decode(&env); err != nil {
		return fmt.Errorf("zkpauthctl: decode response from %s: %w", path, err)
	}
	if env.Status != "ok" {
		if env.Error != nil {
			return fmt.Errorf("zkpauthctl: %s: %s (%s)", path, env.Error.Message, env.Error.Code)
		}
		return fmt.Errorf("zkpauthctl: %s failed with no error detail", path)
	}
	if resp == nil {
		return nil
	}
	return json.Unmarshal(env.Data, resp)
}

type registerReq struct {
	Username string `json:"username"`
	Y1       string `json:"y1"`
	Y2       string `json:"y2"`
}

func (c *apiClient) register(username string, y1, y2 *big.Int) error {
	return c.post("/v1/register", registerReq{
		Username: username,
		Y1:       hex.EncodeToString(y1.Bytes()),
		Y2:       hex.EncodeToString(y2.Bytes()),
	}, nil)
}

type createChallengeReq struct {
	Username string `json:"username"`
	R1       string `json:"r1"`
	R2       string `json:"r2"`
}

type createChallengeResp struct {
	AuthID string `json:"auth_id"`
	C      string `json:"c"`
}

func (c *apiClient) createChallenge(username string, r1, r2 *big.Int) (authID string, challenge *big.Int, err error) {
	var resp createChallengeResp
	if err := c.post("/v1/challenges", createChallengeReq{
		Username: username,
		R1:       hex.EncodeToString(r1.Bytes()),
		R2:       hex.EncodeToString(r2.Bytes()),
	}, &resp); err != nil {
		return "", nil, err
	}
	cBytes, err := hex.DecodeString(resp.C)
	if err != nil {
		return "", nil, fmt.Errorf("zkpauthctl: malformed challenge encoding: %w", err)
	}
	return resp.AuthID, new(big.Int).SetBytes(cBytes), nil
}

type verifyReq struct {
	AuthID string `json:"auth_id"`
	S      string `json:"s"`
}

type verifyResp struct {
	SessionToken string `json:"session_token"`
}

func (c *apiClient) verify(authID string, s *big.Int) (string, error) {
	var resp verifyResp
	if err := c.post("/v1/verify", verifyReq{
		AuthID: authID,
		S:      hex.EncodeToString(s.Bytes()),
	}, &resp); err != nil {
		return "", err
	}
	return resp.SessionToken, nil
}

func cryptoRandScalar(max *big.Int) (*big.Int, error) {
	return rand.Int(rand.Reader, max)
}
