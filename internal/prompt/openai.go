package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions configures the chat-completion backed enhancer.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Fallback   Enhancer
	OnFallback func(reason string, err error)
}

// OpenAIEnhancer asks a chat model for one optimized prompt and falls back
// to the static enhancer when the call cannot be made or fails.
type OpenAIEnhancer struct {
	apiKey     string
	model      string
	baseURL    string
	client     *http.Client
	fallback   Enhancer
	onFallback func(reason string, err error)
}

const openAIDefaultTimeout = 15 * time.Second

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func NewOpenAIEnhancer(opts OpenAIOptions) (*OpenAIEnhancer, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: openAIDefaultTimeout}
	}
	return &OpenAIEnhancer{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    baseURL,
		client:     client,
		fallback:   opts.Fallback,
		onFallback: opts.OnFallback,
	}, nil
}

func (o *OpenAIEnhancer) Compose(ctx context.Context, req ComposeRequest) (string, error) {
	system := fmt.Sprintf("You are a senior prompt engineer. Output one prompt optimized for %s. If video, include motion.", req.ModelName)
	user := strings.TrimSpace(req.UserText)
	if tokens := strings.TrimSpace(req.CineTokens); tokens != "" {
		user += ", " + tokens
	}
	if len(req.Suggest) > 0 {
		user += ". Add: " + strings.Join(req.Suggest, ", ") + "."
	}

	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: 0.6,
		Messages: []openAIMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return o.useFallback(ctx, req, "encode_request", err)
	}
	endpoint := o.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return o.useFallback(ctx, req, "build_request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return o.useFallback(ctx, req, "transport", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return o.useFallback(ctx, req, "read_response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return o.useFallback(ctx, req, "status", fmt.Errorf("status %d: %s", resp.StatusCode, body))
	}
	var parsed openAIChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil || len(parsed.Choices) == 0 {
		return o.useFallback(ctx, req, "decode_response", err)
	}
	text := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if text == "" {
		return o.useFallback(ctx, req, "empty_completion", nil)
	}
	return text, nil
}

func (o *OpenAIEnhancer) useFallback(ctx context.Context, req ComposeRequest, reason string, err error) (string, error) {
	if o.onFallback != nil {
		o.onFallback(reason, err)
	}
	if o.fallback != nil {
		return o.fallback.Compose(ctx, req)
	}
	if err != nil {
		return "", fmt.Errorf("openai enhance (%s): %w", reason, err)
	}
	return "", fmt.Errorf("openai enhance failed: %s", reason)
}

var _ Enhancer = (*OpenAIEnhancer)(nil)
