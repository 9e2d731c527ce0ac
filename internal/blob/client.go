// Package blob talks to the binary large-object staging service used for
// inputs too large to pass through a single request. It is separate from the
// generation provider: staged files are re-uploaded to provider storage
// before submission.
package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrMissingToken indicates the client was configured without a read/write credential.
var ErrMissingToken = errors.New("blob: read/write token is required")

// Options configures the staging client.
type Options struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// Client performs the generate-upload-url handshake against the staging service.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

// UploadGrant is the staging service's response: a signed URL the browser
// uploads to directly, bypassing this server.
type UploadGrant struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

// NewClient constructs a staging client.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, ErrMissingToken
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.vercel.com/v2/blob"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		token:      strings.TrimSpace(opts.Token),
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// Configured reports whether staging uploads are available.
func (c *Client) Configured() bool {
	return c != nil && c.token != ""
}

// GenerateUploadURL asks the staging service for a one-shot signed upload URL.
func (c *Client) GenerateUploadURL(ctx context.Context) (*UploadGrant, error) {
	endpoint := c.baseURL + "/generate-upload-url"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("blob: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blob: generate upload url: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("blob: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("blob: generate upload url: status %d: %s", resp.StatusCode, body)
	}
	var grant UploadGrant
	if err := json.Unmarshal(body, &grant); err != nil || grant.URL == "" {
		return nil, fmt.Errorf("blob: malformed upload grant")
	}
	return &grant, nil
}
