// Package identity talks to the Clerk Backend API.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 15 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second

	userAgent = "Imaginify-Backend/1.0"
)

// ErrUserNotFound is returned when Clerk has no user with the given id.
var ErrUserNotFound = errors.New("identity user not found")

// APIError is a non-2xx answer from the Backend API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("clerk api returned %d: %s", e.StatusCode, e.Body)
}

// Client calls the Clerk Backend API with a secret key.
type Client struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a Backend API client for baseURL.
// A nil httpClient selects NewHTTPClient().
func NewClient(baseURL, secretKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: httpClient,
	}
}

// NewHTTPClient creates an HTTP client with bounded timeouts that does not
// follow redirects.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          20,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

type metadataRequest struct {
	PublicMetadata map[string]any `json:"public_metadata"`
}

// UpdateUserMetadata merges publicMetadata into the Clerk user's public metadata.
func (c *Client) UpdateUserMetadata(ctx context.Context, userID string, publicMetadata map[string]any) error {
	body, err := json.Marshal(metadataRequest{PublicMetadata: publicMetadata})
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}

	endpoint := c.baseURL + "/v1/users/" + url.PathEscape(userID) + "/metadata"
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build metadata request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("update user metadata: %w", err)
	}
	defer resp.Body.Close()

	// Read limited response body so the connection can be reused
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrUserNotFound
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	return nil
}
