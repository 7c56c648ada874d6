// Package client is the Go SDK for the rewards shop API. It owns the token
// lifecycle: login stores the token pair, an expired access token is
// refreshed transparently at most once per request, and a failed refresh
// clears the session so callers can route back to the login screen.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

const requestTimeout = 30 * time.Second

// ErrSessionExpired is returned once the refresh path has been exhausted.
// Stored credentials are already cleared when a caller sees this error.
var ErrSessionExpired = errors.New("session expired, please log in again")

// State is the client's authentication state.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
	StateRefreshing
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	case StateRefreshing:
		return "refreshing"
	default:
		return "anonymous"
	}
}

// APIError is a server error response normalized from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Client talks to the rewards API at baseURL (e.g. "http://localhost:8080").
// Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      TokenStore

	mu    sync.Mutex
	creds Credentials
	state State
}

func New(baseURL string, store TokenStore) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/api/v1",
		httpClient: &http.Client{Timeout: requestTimeout},
		store:      store,
		state:      StateAnonymous,
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Login authenticates and persists the resulting token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*UserProfile, error) {
	c.setState(StateAuthenticating)

	var out struct {
		AccessToken  string      `json:"access_token"`
		RefreshToken string      `json:"refresh_token"`
		IDToken      string      `json:"id_token"`
		User         UserProfile `json:"user"`
	}
	err := c.doOnce(ctx, "POST", "/auth/login",
		map[string]string{"username": username, "password": password}, &out, false)
	if err != nil {
		c.setState(StateAnonymous)
		return nil, err
	}

	c.mu.Lock()
	c.creds = Credentials{
		AccessToken:  out.AccessToken,
		RefreshToken: out.RefreshToken,
		IDToken:      out.IDToken,
		Username:     out.User.Username,
		Profile:      &out.User,
	}
	c.state = StateAuthenticated
	creds := c.creds
	c.mu.Unlock()

	if err := c.store.Save(creds); err != nil {
		log.Printf("client: failed to persist credentials: %v", err)
	}
	return &out.User, nil
}

// Restore loads persisted credentials and revalidates them against the
// server. The session is assumed valid while the round trip is in flight so
// the UI can render immediately. A 401 clears the session and returns
// ErrSessionExpired; a transport error keeps the optimistic session and is
// returned so the caller can decide whether to retry.
func (c *Client) Restore(ctx context.Context) (*UserProfile, error) {
	creds, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if creds.Empty() {
		c.setState(StateAnonymous)
		return nil, nil
	}

	c.mu.Lock()
	c.creds = creds
	c.state = StateAuthenticated
	c.mu.Unlock()

	profile, err := c.Me(ctx)
	if err != nil {
		if errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
		// Server unreachable. Keep the cached session and let the next
		// request revalidate.
		return creds.Profile, err
	}

	c.mu.Lock()
	c.creds.Profile = profile
	creds = c.creds
	c.mu.Unlock()

	if err := c.store.Save(creds); err != nil {
		log.Printf("client: failed to persist credentials: %v", err)
	}
	return profile, nil
}

// Logout tells the server and clears local credentials. The local clear
// happens even when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doOnce(ctx, "POST", "/auth/logout", nil, nil, true); err != nil {
		log.Printf("client: logout request failed: %v", err)
	}
	c.clearSession()
	return nil
}

// Profile returns the cached profile without a network round trip.
func (c *Client) Profile() *UserProfile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.Profile
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Client) clearSession() {
	c.mu.Lock()
	c.creds = Credentials{}
	c.state = StateAnonymous
	c.mu.Unlock()

	if err := c.store.Clear(); err != nil {
		log.Printf("client: failed to clear credentials: %v", err)
	}
}

// do performs an authenticated request. On 401 it refreshes the access token
// and retries exactly once; a refresh failure or a second 401 clears the
// session and surfaces ErrSessionExpired.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	err := c.doOnce(ctx, method, path, body, out, true)

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		return err
	}

	if err := c.refresh(ctx); err != nil {
		c.clearSession()
		return ErrSessionExpired
	}

	err = c.doOnce(ctx, method, path, body, out, true)
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		c.clearSession()
		return ErrSessionExpired
	}
	return err
}

func (c *Client) refresh(ctx context.Context) error {
	c.mu.Lock()
	refreshToken := c.creds.RefreshToken
	username := c.creds.Username
	c.state = StateRefreshing
	c.mu.Unlock()

	if refreshToken == "" {
		return ErrSessionExpired
	}

	var out struct {
		AccessToken string `json:"access_token"`
		IDToken     string `json:"id_token"`
	}
	err := c.doOnce(ctx, "POST", "/auth/refresh",
		map[string]string{"refresh_token": refreshToken, "username": username}, &out, false)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.creds.AccessToken = out.AccessToken
	c.creds.IDToken = out.IDToken
	c.state = StateAuthenticated
	creds := c.creds
	c.mu.Unlock()

	if err := c.store.Save(creds); err != nil {
		log.Printf("client: failed to persist refreshed credentials: %v", err)
	}
	return nil
}

// doOnce performs a single HTTP round trip with no retry logic.
func (c *Client) doOnce(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		c.mu.Lock()
		token := c.creds.AccessToken
		c.mu.Unlock()
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseAPIError normalizes server errors into *APIError. It understands the
// standard envelope and falls back to the raw body for anything else.
func parseAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		apiErr.Message = resp.Status
		return apiErr
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(data))
	if apiErr.Message == "" {
		apiErr.Message = resp.Status
	}
	return apiErr
}
