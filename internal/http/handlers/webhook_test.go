package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func TestWebhookStoresResult(t *testing.T) {
	gw := newStubGateway()
	gw.result = map[string]any{
		"request_id": "req-1",
		"video":      map[string]any{"url": "https://v3.fal.media/files/out.mp4"},
	}
	app := newTestApp(gw)

	rec := postJSON(t, app.Webhook, "/api/webhook?model_id=fal-ai/bytedance/seedance/v1/pro/image-to-video", map[string]any{
		"request_id": "req-1",
		"status":     "OK",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeJSON(t, rec)
	if resp["ok"] != true {
		t.Errorf("expected ok true, got %v", resp["ok"])
	}

	stored, ok, err := app.Results.Get(context.Background(), "req-1")
	if err != nil || !ok {
		t.Fatalf("result not cached: ok=%v err=%v", ok, err)
	}
	// The thin notification is replaced by the authoritative fetched result.
	if !reflect.DeepEqual(stored, gw.result) {
		t.Errorf("cached %v, want fetched result", stored)
	}
}

func TestWebhookAlternateIDKeys(t *testing.T) {
	for _, key := range []string{"request_id", "requestId", "id"} {
		gw := newStubGateway()
		gw.resultErr = errors.New("not ready")
		app := newTestApp(gw)

		rec := postJSON(t, app.Webhook, "/api/webhook?model_id=fal-ai/flux/dev", map[string]any{
			key: "req-" + key,
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("key %s: expected 200, got %d", key, rec.Code)
		}
		if _, ok, _ := app.Results.Get(context.Background(), "req-"+key); !ok {
			t.Errorf("key %s: result not cached", key)
		}
	}
}

func TestWebhookMissingRequestID(t *testing.T) {
	gw := newStubGateway()
	app := newTestApp(gw)

	rec := postJSON(t, app.Webhook, "/api/webhook", map[string]any{"status": "OK"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeJSON(t, rec)
	if resp["ok"] != false {
		t.Errorf("expected ok false, got %v", resp["ok"])
	}
	if gw.providerCalls() != 0 {
		t.Errorf("unidentified webhook must not reach the provider, got %d calls", gw.providerCalls())
	}
}

func TestWebhookFetchFailureKeepsBody(t *testing.T) {
	gw := newStubGateway()
	gw.resultErr = errors.New("upstream 500")
	app := newTestApp(gw)

	body := map[string]any{
		"request_id": "req-2",
		"payload":    map[string]any{"images": []any{map[string]any{"url": "https://v3.fal.media/files/a.png"}}},
	}
	rec := postJSON(t, app.Webhook, "/api/webhook?model_id=fal-ai/flux/dev", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	stored, ok, err := app.Results.Get(context.Background(), "req-2")
	if err != nil || !ok {
		t.Fatalf("result not cached: ok=%v err=%v", ok, err)
	}
	if stored["request_id"] != "req-2" {
		t.Errorf("raw notification body should be cached on fetch failure, got %v", stored)
	}
}

func TestWebhookReplayIsIdempotent(t *testing.T) {
	gw := newStubGateway()
	gw.result = map[string]any{
		"request_id": "req-3",
		"video":      map[string]any{"url": "https://v3.fal.media/files/out.mp4"},
	}
	app := newTestApp(gw)

	target := "/api/webhook?model_id=fal-ai/bytedance/seedance/v1/pro/image-to-video"
	body := map[string]any{"request_id": "req-3"}
	first := postJSON(t, app.Webhook, target, body)
	second := postJSON(t, app.Webhook, target, body)
	if first.Code != http.StatusOK || second.Code != http.StatusOK {
		t.Fatalf("replays must be acknowledged, got %d then %d", first.Code, second.Code)
	}

	stored, ok, _ := app.Results.Get(context.Background(), "req-3")
	if !ok || !reflect.DeepEqual(stored, gw.result) {
		t.Errorf("replay changed cached state: %v", stored)
	}
}

func TestWebhookBadPayload(t *testing.T) {
	app := newTestApp(newStubGateway())
	req := httptest.NewRequest(http.MethodPost, "/api/webhook", nil)
	rec := httptest.NewRecorder()
	app.Webhook(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestWebhookCheckCacheHit(t *testing.T) {
	gw := newStubGateway()
	app := newTestApp(gw)
	cached := map[string]any{"images": []any{map[string]any{"url": "https://v3.fal.media/files/a.png"}}}
	if err := app.Results.Set(context.Background(), "req-4", cached); err != nil {
		t.Fatalf("seed cache: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/webhook/check?requestId=req-4", nil)
	rec := httptest.NewRecorder()
	app.WebhookCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeJSON(t, rec)
	if resp["media_url"] != "https://v3.fal.media/files/a.png" {
		t.Errorf("unexpected media_url %v", resp["media_url"])
	}
	if gw.providerCalls() != 0 {
		t.Errorf("cache hit must not call the provider, got %d calls", gw.providerCalls())
	}
}

func TestWebhookCheckFallbackFetch(t *testing.T) {
	gw := newStubGateway()
	gw.result = map[string]any{"video": map[string]any{"url": "https://v3.fal.media/files/b.mp4"}}
	app := newTestApp(gw)

	req := httptest.NewRequest(http.MethodGet, "/api/webhook/check?requestId=req-5&model_id=fal-ai/sync-lipsync/v2/pro", nil)
	rec := httptest.NewRecorder()
	app.WebhookCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeJSON(t, rec)
	if resp["media_url"] != "https://v3.fal.media/files/b.mp4" {
		t.Errorf("unexpected media_url %v", resp["media_url"])
	}
	if _, ok, _ := app.Results.Get(context.Background(), "req-5"); !ok {
		t.Errorf("fallback fetch should populate the cache")
	}
}

func TestWebhookCheckPending(t *testing.T) {
	gw := newStubGateway()
	gw.resultErr = errors.New("404 not found")
	app := newTestApp(gw)

	req := httptest.NewRequest(http.MethodGet, "/api/webhook/check?requestId=req-6", nil)
	rec := httptest.NewRecorder()
	app.WebhookCheck(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeJSON(t, rec)
	if resp["status"] != "pending" {
		t.Errorf("expected pending, got %v", resp["status"])
	}
}
