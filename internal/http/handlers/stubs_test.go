package handlers

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"studio/internal/infra"
	"studio/internal/prompt"
	"studio/internal/store"
)

// stubGateway records calls and returns canned answers so handler tests can
// assert both responses and the absence of provider traffic.
type stubGateway struct {
	mu    sync.Mutex
	calls map[string]int

	submitID  string
	submitRaw map[string]any
	submitErr error
	// captured submit arguments
	submitModel   string
	submitInput   map[string]any
	submitWebhook string

	subscribeResult map[string]any
	subscribeErr    error

	statusValue string
	statusRaw   map[string]any
	statusErr   error

	result    map[string]any
	resultErr error

	probeType string
	probeSize int64
	probeErr  error

	uploadURL string
	uploadErr error
}

func newStubGateway() *stubGateway {
	return &stubGateway{calls: make(map[string]int), probeType: "image/jpeg", probeSize: 1024}
}

func (g *stubGateway) record(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls[name]++
}

func (g *stubGateway) count(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[name]
}

func (g *stubGateway) providerCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	total := 0
	for _, n := range g.calls {
		total += n
	}
	return total
}

func (g *stubGateway) SubmitQueueJob(ctx context.Context, modelID string, input map[string]any, webhookURL string) (string, map[string]any, error) {
	g.record("submit")
	g.mu.Lock()
	g.submitModel = modelID
	g.submitInput = input
	g.submitWebhook = webhookURL
	g.mu.Unlock()
	if g.submitErr != nil {
		return "", nil, g.submitErr
	}
	return g.submitID, g.submitRaw, nil
}

func (g *stubGateway) SubscribeAndWait(ctx context.Context, modelID string, input map[string]any) (map[string]any, error) {
	g.record("subscribe")
	if g.subscribeErr != nil {
		return nil, g.subscribeErr
	}
	return g.subscribeResult, nil
}

func (g *stubGateway) QueryStatus(ctx context.Context, modelID, requestID string) (string, map[string]any, error) {
	g.record("status")
	if g.statusErr != nil {
		return "", nil, g.statusErr
	}
	return g.statusValue, g.statusRaw, nil
}

func (g *stubGateway) FetchResult(ctx context.Context, modelID, requestID string) (map[string]any, error) {
	g.record("result")
	if g.resultErr != nil {
		return nil, g.resultErr
	}
	return g.result, nil
}

func (g *stubGateway) UploadAsset(ctx context.Context, data []byte, contentType string) (string, error) {
	g.record("upload")
	if g.uploadErr != nil {
		return "", g.uploadErr
	}
	return g.uploadURL, nil
}

func (g *stubGateway) EnsureHostedURL(ctx context.Context, assetURL string) (string, error) {
	g.record("ensure")
	return assetURL, nil
}

func (g *stubGateway) ProbeAsset(ctx context.Context, assetURL string) (string, int64, error) {
	g.record("probe")
	if g.probeErr != nil {
		return "", -1, g.probeErr
	}
	return g.probeType, g.probeSize, nil
}

func (g *stubGateway) Relay(ctx context.Context, target string) ([]byte, int, string, error) {
	g.record("relay")
	return []byte(`{"ok":true}`), 200, "application/json", nil
}

func (g *stubGateway) HasCredentials() bool { return true }
func (g *stubGateway) KeyPreview() string   { return "test-k:***" }

var _ Gateway = (*stubGateway)(nil)

func newTestApp(gw Gateway) *App {
	logger := infra.Logger(zerolog.New(io.Discard))
	return &App{
		Config: &infra.Config{
			PublicBaseURL:  "https://studio.example",
			MaxUploadBytes: 10 * 1024 * 1024,
		},
		Logger:   logger,
		Gateway:  gw,
		Results:  store.NewMemory(0),
		Enhancer: prompt.NewStaticEnhancer(),
	}
}
