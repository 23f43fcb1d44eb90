package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/spec-kit/school-portal/internal/api/dto"
	"github.com/spec-kit/school-portal/internal/domain"
)

var (
	// ErrInvalidLogin is returned for rejected credentials. The server's
	// message does not distinguish username from password failures.
	ErrInvalidLogin = errors.New("invalid username or password")
	// ErrNetwork wraps transport-level failures (timeouts, refused
	// connections), which are transient from the client's viewpoint.
	ErrNetwork = errors.New("network error")
)

// Client talks to the portal API and maintains the local session.
type Client struct {
	baseURL string
	http    *http.Client
	session *Session
}

// New builds a client over the given storage. The session starts
// unresolved; call Resolve (or Login) before consulting guards.
func New(baseURL string, storage Storage) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
		session: NewSession(storage),
	}
}

// Session exposes the client's session for guard evaluation.
func (c *Client) Session() *Session {
	return c.session
}

// Login performs the credential round trip and atomically replaces the
// session state on success. Cancellation and timeouts surface as
// ErrNetwork-wrapped errors.
func (c *Client) Login(ctx context.Context, username, password string) error {
	body, err := json.Marshal(dto.LoginRequest{Username: username, Password: password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrInvalidLogin
	default:
		return fmt.Errorf("login failed: %s", readMessage(resp.Body))
	}

	var loginResp dto.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}
	role, ok := domain.ParseRole(loginResp.Identity.Role)
	if !ok {
		return fmt.Errorf("login response carried unknown role %q", loginResp.Identity.Role)
	}

	return c.session.establish(loginResp.Token, StoredIdentity{
		SubjectID: loginResp.Identity.SubjectID,
		Role:      role,
		ExpiresAt: loginResp.ExpiresAt,
	})
}

// Logout tells the server (best effort) and clears the local session
// either way.
func (c *Client) Logout(ctx context.Context) error {
	token := c.session.Token()
	defer c.session.Clear()

	if token == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/logout", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	return nil
}

// Whoami asks the server to verify the stored token and echo the
// identity plus landing route.
func (c *Client) Whoami(ctx context.Context) (*dto.Identity, string, error) {
	token := c.session.Token()
	if token == "" {
		return nil, "", ErrInvalidLogin
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/me", nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("whoami failed: %s", readMessage(resp.Body))
	}

	var out struct {
		Identity dto.Identity `json:"identity"`
		Route    string       `json:"route"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, "", err
	}
	return &out.Identity, out.Route, nil
}

func readMessage(r io.Reader) string {
	var payload struct {
		Message string `json:"message"`
	}
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err == nil && json.Unmarshal(data, &payload) == nil && payload.Message != "" {
		return payload.Message
	}
	return "unexpected response"
}
