// Package fal wraps every outbound call to the generation provider: queue
// submission, synchronous runs, status polling, result retrieval and storage
// uploads. All calls authenticate with the process-wide API key.
package fal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"studio/internal/infra"
)

// Options configures the provider client.
type Options struct {
	APIKey       string
	QueueBaseURL string
	SyncBaseURL  string
	RestBaseURL  string
	// SubscribeTimeout bounds the blocking synchronous-wait path. Queue
	// operations use a much shorter default.
	SubscribeTimeout time.Duration
	HTTPClient       *http.Client
	Logger           *infra.Logger
}

// Client performs HTTP calls against the provider's queue, sync and storage
// endpoints.
type Client struct {
	apiKey       string
	queueBaseURL string
	syncBaseURL  string
	restBaseURL  string
	httpClient   *http.Client
	syncClient   *http.Client
	logger       *infra.Logger
}

type submitResponse struct {
	RequestID string `json:"request_id"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type initiateUploadRequest struct {
	ContentType string `json:"content_type"`
	FileName    string `json:"file_name"`
}

type initiateUploadResponse struct {
	FileURL   string `json:"file_url"`
	UploadURL string `json:"upload_url"`
}

// Hosted asset URLs never need re-uploading before being referenced as a job
// input; anything else does.
var hostedURLPattern = regexp.MustCompile(`^(?i)(https?://(v\d+\.)?fal\.media/|https?://storage\.googleapis\.com/falserverless/)`)

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	queueBase := strings.TrimRight(opts.QueueBaseURL, "/")
	if queueBase == "" {
		queueBase = "https://queue.fal.run"
	}
	syncBase := strings.TrimRight(opts.SyncBaseURL, "/")
	if syncBase == "" {
		syncBase = "https://fal.run"
	}
	restBase := strings.TrimRight(opts.RestBaseURL, "/")
	if restBase == "" {
		restBase = "https://rest.alpha.fal.ai"
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	subscribeTimeout := opts.SubscribeTimeout
	if subscribeTimeout <= 0 {
		subscribeTimeout = 90 * time.Second
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		queueBaseURL: queueBase,
		syncBaseURL:  syncBase,
		restBaseURL:  restBase,
		httpClient:   httpClient,
		syncClient:   &http.Client{Timeout: subscribeTimeout, Transport: httpClient.Transport},
		logger:       logger,
	}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// KeyPreview returns a masked form of the credential for diagnostics.
func (c *Client) KeyPreview() string {
	if len(c.apiKey) < 6 {
		return ""
	}
	return c.apiKey[:6] + ":***"
}

// SubmitQueueJob enqueues an asynchronous job and returns the provider's
// request id together with the raw submit payload. A non-empty webhookURL
// asks the provider to push the result when the job finishes.
func (c *Client) SubmitQueueJob(ctx context.Context, modelID string, input map[string]any, webhookURL string) (string, map[string]any, error) {
	endpoint := fmt.Sprintf("%s/%s", c.queueBaseURL, modelID)
	if webhookURL != "" {
		endpoint += "?fal_webhook=" + url.QueryEscape(webhookURL)
	}
	body, status, err := c.doJSON(ctx, c.httpClient, http.MethodPost, endpoint, input)
	if err != nil {
		return "", nil, fmt.Errorf("fal: submit %s: %w", modelID, err)
	}
	if status < 200 || status >= 300 {
		c.logger.Warn().Int("status", status).Str("model", modelID).Msg("fal submit rejected")
		return "", nil, &SubmitError{StatusCode: status, Body: string(body)}
	}
	var parsed submitResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.RequestID == "" {
		return "", nil, fmt.Errorf("fal: submit %s: no request_id in response", modelID)
	}
	raw := decodeLoose(body)
	c.logger.Info().Str("model", modelID).Str("request_id", parsed.RequestID).Msg("fal job submitted")
	return parsed.RequestID, raw, nil
}

// SubscribeAndWait submits a job on the synchronous endpoint and blocks until
// the provider returns the final result or the subscribe timeout elapses.
func (c *Client) SubscribeAndWait(ctx context.Context, modelID string, input map[string]any) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/%s", c.syncBaseURL, modelID)
	body, status, err := c.doJSON(ctx, c.syncClient, http.MethodPost, endpoint, input)
	if err != nil {
		return nil, fmt.Errorf("fal: subscribe %s: %w", modelID, err)
	}
	if status < 200 || status >= 300 {
		return nil, &ExecutionError{StatusCode: status, Body: string(body)}
	}
	payload := decodeLoose(body)
	if payload == nil {
		return nil, fmt.Errorf("fal: subscribe %s: malformed response body", modelID)
	}
	return payload, nil
}

// QueryStatus polls the current job state in the model's queue namespace.
func (c *Client) QueryStatus(ctx context.Context, modelID, requestID string) (string, map[string]any, error) {
	endpoint := fmt.Sprintf("%s/%s/requests/%s/status", c.queueBaseURL, modelID, url.PathEscape(requestID))
	body, status, err := c.doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", nil, &StatusError{Err: err}
	}
	if status < 200 || status >= 300 {
		return "", nil, &StatusError{Err: fmt.Errorf("status %d: %s", status, body)}
	}
	var parsed statusResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Status == "" {
		return "", nil, &StatusError{Err: fmt.Errorf("malformed status body")}
	}
	return parsed.Status, decodeLoose(body), nil
}

// FetchResult retrieves the final payload once status indicates completion.
func (c *Client) FetchResult(ctx context.Context, modelID, requestID string) (map[string]any, error) {
	endpoint := fmt.Sprintf("%s/%s/requests/%s", c.queueBaseURL, modelID, url.PathEscape(requestID))
	body, status, err := c.doJSON(ctx, c.httpClient, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("fal: fetch result %s: %w", requestID, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("fal: fetch result %s: status %d: %s", requestID, status, body)
	}
	payload := decodeLoose(body)
	if payload == nil {
		return nil, fmt.Errorf("fal: fetch result %s: malformed response body", requestID)
	}
	return payload, nil
}

// UploadAsset pushes bytes to the provider's storage and returns the
// canonical file URL. The upload is a two-step handshake: initiate for a
// signed upload URL, then PUT the bytes.
func (c *Client) UploadAsset(ctx context.Context, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	initiate := initiateUploadRequest{
		ContentType: contentType,
		FileName:    "upload_" + uuid.NewString(),
	}
	endpoint := c.restBaseURL + "/storage/upload/initiate?storage_type=fal-cdn-v3"
	body, status, err := c.doJSON(ctx, c.httpClient, http.MethodPost, endpoint, initiate)
	if err != nil {
		return "", fmt.Errorf("fal: initiate upload: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", fmt.Errorf("fal: initiate upload: status %d: %s", status, body)
	}
	var parsed initiateUploadResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.UploadURL == "" || parsed.FileURL == "" {
		return "", fmt.Errorf("fal: initiate upload: malformed response")
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, parsed.UploadURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("fal: build upload request: %w", err)
	}
	putReq.Header.Set("Content-Type", contentType)
	resp, err := c.httpClient.Do(putReq)
	if err != nil {
		return "", fmt.Errorf("fal: upload bytes: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		leaked, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("fal: upload bytes: status %d: %s", resp.StatusCode, leaked)
	}
	c.logger.Debug().Str("file_url", parsed.FileURL).Msg("asset uploaded to provider storage")
	return parsed.FileURL, nil
}

// IsHostedURL reports whether the URL already lives on provider storage.
func IsHostedURL(u string) bool {
	return hostedURLPattern.MatchString(u)
}

// EnsureHostedURL returns a provider-storage URL for the given asset,
// re-uploading the bytes when the source is an external host. Jobs that
// reference input media must use provider-hosted URLs.
func (c *Client) EnsureHostedURL(ctx context.Context, assetURL string) (string, error) {
	if IsHostedURL(assetURL) {
		return assetURL, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, assetURL, nil)
	if err != nil {
		return "", fmt.Errorf("fal: build asset fetch: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fal: fetch asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fal: fetch asset: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fal: read asset: %w", err)
	}
	contentType := resp.Header.Get("Content-Type")
	return c.UploadAsset(ctx, data, contentType)
}

// ProbeAsset issues a HEAD request against an input URL and reports its
// content type and size (-1 when the host does not send Content-Length).
// Used to fail fast before incurring provider cost.
func (c *Client) ProbeAsset(ctx context.Context, assetURL string) (string, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, assetURL, nil)
	if err != nil {
		return "", -1, fmt.Errorf("fal: build asset probe: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", -1, fmt.Errorf("fal: probe asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", -1, fmt.Errorf("fal: asset URL not accessible: status %d", resp.StatusCode)
	}
	return resp.Header.Get("Content-Type"), resp.ContentLength, nil
}

// Relay performs an authenticated GET against an arbitrary provider URL and
// returns the raw body, status and content type. Serves the debug
// pass-through endpoint.
func (c *Client) Relay(ctx context.Context, target string) ([]byte, int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fal: build relay request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fal: relay: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, "", fmt.Errorf("fal: relay read: %w", err)
	}
	return body, resp.StatusCode, resp.Header.Get("Content-Type"), nil
}

func (c *Client) doJSON(ctx context.Context, client *http.Client, method, endpoint string, payload any) ([]byte, int, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Key "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return raw, resp.StatusCode, nil
}

func decodeLoose(body []byte) map[string]any {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil
	}
	return payload
}
