package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"studio/internal/blob"
	"studio/internal/infra"
	"studio/internal/prompt"
	"studio/internal/store"
)

// Gateway is the surface of the generation provider the handlers depend on.
// Satisfied by *fal.Client; handler tests substitute stubs.
type Gateway interface {
	SubmitQueueJob(ctx context.Context, modelID string, input map[string]any, webhookURL string) (string, map[string]any, error)
	SubscribeAndWait(ctx context.Context, modelID string, input map[string]any) (map[string]any, error)
	QueryStatus(ctx context.Context, modelID, requestID string) (string, map[string]any, error)
	FetchResult(ctx context.Context, modelID, requestID string) (map[string]any, error)
	UploadAsset(ctx context.Context, data []byte, contentType string) (string, error)
	EnsureHostedURL(ctx context.Context, assetURL string) (string, error)
	ProbeAsset(ctx context.Context, assetURL string) (string, int64, error)
	Relay(ctx context.Context, target string) ([]byte, int, string, error)
	HasCredentials() bool
	KeyPreview() string
}

// App bundles the dependencies shared by every route handler.
type App struct {
	Config   *infra.Config
	Logger   infra.Logger
	Gateway  Gateway
	Results  store.ResultStore
	Blob     *blob.Client
	Enhancer prompt.Enhancer
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, message string) {
	a.json(w, code, map[string]any{"error": message})
}
