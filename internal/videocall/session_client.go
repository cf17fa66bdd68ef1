package videocall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SessionSource obtains a platform session for a new room. Provisioning is
// the one place this system calls out to the video platform; a failure here
// must reach the caller instead of being papered over.
type SessionSource interface {
	CreateSession(ctx context.Context) (string, error)
}

// APISessionClient requests sessions from the external video platform's
// REST API.
type APISessionClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewAPISessionClient returns nil when no base URL is configured so callers
// can fall through to the local source.
func NewAPISessionClient(baseURL, apiKey string, httpClient *http.Client) *APISessionClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &APISessionClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
	}
}

type sessionResponse struct {
	SessionID string `json:"sessionId"`
}

// CreateSession POSTs to {base}/sessions and returns the platform session id.
func (c *APISessionClient) CreateSession(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/sessions", strings.NewReader(`{"mediaMode":"routed"}`))
	if err != nil {
		return "", fmt.Errorf("videocall: build session request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPlatformUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("%w: status %d: %s", ErrPlatformUnavailable, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding session response: %v", ErrPlatformUnavailable, err)
	}
	if out.SessionID == "" {
		return "", fmt.Errorf("%w: empty session id in response", ErrPlatformUnavailable)
	}
	return out.SessionID, nil
}

// LocalSessionSource mints session ids in process. Used in development and
// tests when no platform endpoint is configured.
type LocalSessionSource struct{}

func (LocalSessionSource) CreateSession(context.Context) (string, error) {
	return uuid.NewString(), nil
}
