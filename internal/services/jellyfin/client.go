package jellyfin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"tiermover/internal/services"
)

// HTTPDoer describes the HTTP client used by the Jellyfin service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to a Jellyfin server's REST API.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

// NewClient constructs a Jellyfin API client. A nil doer falls back to
// http.DefaultClient.
func NewClient(baseURL, apiKey string, doer HTTPDoer) *Client {
	if doer == nil {
		doer = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:  strings.TrimSpace(apiKey),
		client:  doer,
	}
}

// SystemInfo holds the subset of /System/Info used for connectivity checks.
type SystemInfo struct {
	ServerName string `json:"ServerName"`
	Version    string `json:"Version"`
}

// User holds the subset of /Users/{id} used to confirm an account exists.
type User struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// Ping verifies connectivity and API key validity via a lightweight info query.
func (c *Client) Ping(ctx context.Context) (SystemInfo, error) {
	var info SystemInfo
	if err := c.getJSON(ctx, "/System/Info", nil, &info); err != nil {
		return SystemInfo{}, services.Wrap(services.ErrConnectivity, "jellyfin", "system info", "Playback source unreachable or rejected the API key", err)
	}
	return info, nil
}

// GetUser confirms that userID resolves to a real account.
func (c *Client) GetUser(ctx context.Context, userID string) (User, error) {
	var user User
	if err := c.getJSON(ctx, "/Users/"+url.PathEscape(userID), nil, &user); err != nil {
		return User{}, services.Wrap(services.ErrConnectivity, "jellyfin", "resolve user", fmt.Sprintf("User %s did not resolve to an account", userID), err)
	}
	return user, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Emby-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
