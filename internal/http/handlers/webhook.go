package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/media"
)

// Webhook receives the provider's push notification for a finished job,
// fetches the authoritative result and caches it. Replays are harmless:
// they overwrite the entry with the same terminal payload.
func (a *App) Webhook(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		a.json(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "invalid payload"})
		return
	}

	requestID := firstString(body, "request_id", "requestId", "id")
	if requestID == "" {
		a.json(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "missing request_id"})
		return
	}

	ctx := r.Context()
	// Some webhook bodies are thin notifications without the media URL; the
	// queue result endpoint has the full payload. Keep the body when the
	// fetch fails — the status route retries against the provider anyway.
	payload := body
	if modelID := r.URL.Query().Get("model_id"); modelID != "" {
		if result, err := a.Gateway.FetchResult(ctx, modelID, requestID); err == nil && result != nil {
			payload = result
		}
	}

	if err := a.Results.Set(ctx, requestID, payload); err != nil {
		a.Logger.Error().Err(err).Str("request_id", requestID).Msg("webhook cache write failed")
		a.json(w, http.StatusInternalServerError, map[string]any{"ok": false, "error": "failed to store result"})
		return
	}

	// Extraction here is diagnostic only; a payload without a URL is still
	// acknowledged and the integrity check happens at poll time.
	a.Logger.Info().
		Str("request_id", requestID).
		Bool("has_media_url", media.URL(payload) != "").
		Msg("webhook stored")
	a.json(w, http.StatusOK, map[string]any{"ok": true})
}

// WebhookCheck is a synchronous cache read with a one-shot direct-fetch
// fallback for environments where the webhook cannot reach this process.
func (a *App) WebhookCheck(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get("requestId")
	if requestID == "" {
		a.error(w, http.StatusBadRequest, "Missing requestId")
		return
	}
	ctx := r.Context()

	if cached, ok, err := a.Results.Get(ctx, requestID); err == nil && ok {
		if mediaURL := media.URL(cached); mediaURL != "" {
			a.json(w, http.StatusOK, map[string]any{"media_url": mediaURL, "raw": cached})
			return
		}
	}

	modelID := r.URL.Query().Get("model_id")
	if modelID == "" {
		modelID = "fal-ai/flux/dev"
	}
	if payload, err := a.Gateway.FetchResult(ctx, modelID, requestID); err == nil {
		if mediaURL := media.URL(payload); mediaURL != "" {
			if err := a.Results.Set(ctx, requestID, payload); err != nil {
				a.Logger.Warn().Err(err).Str("request_id", requestID).Msg("cache write failed")
			}
			a.json(w, http.StatusOK, map[string]any{"media_url": mediaURL, "raw": payload})
			return
		}
	}

	a.json(w, http.StatusOK, map[string]any{"status": "pending"})
}
