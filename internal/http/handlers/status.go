package handlers

import (
	"net/http"

	"studio/internal/catalog"
	"studio/internal/domain"
	"studio/internal/media"
)

// Status serves client polling. The cache is consulted first so a webhook
// delivered before the first poll short-circuits further provider calls; it
// also makes terminal answers monotonic.
func (a *App) Status(w http.ResponseWriter, r *http.Request) {
	requestID := r.URL.Query().Get("request_id")
	if requestID == "" {
		a.error(w, http.StatusBadRequest, "Missing request_id parameter")
		return
	}
	modelID := r.URL.Query().Get("model_id")
	if modelID == "" {
		a.error(w, http.StatusBadRequest, "Missing model_id parameter")
		return
	}
	model, err := catalog.Lookup(modelID)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Unknown model")
		return
	}
	ctx := r.Context()

	if cached, ok, err := a.Results.Get(ctx, requestID); err == nil && ok {
		if mediaURL := media.URL(cached); mediaURL != "" {
			a.json(w, http.StatusOK, map[string]any{
				"request_id": requestID,
				"status":     string(domain.StatusComplete),
				"media_url":  mediaURL,
				"media_type": string(model.Kind),
				"message":    "Generation completed successfully!",
				"raw":        cached,
			})
			return
		}
	}

	rawStatus, progress, err := a.Gateway.QueryStatus(ctx, modelID, requestID)
	if err != nil {
		// The job may still be running; report soft failure so the client
		// keeps polling instead of giving up on a 5xx.
		a.Logger.Warn().Err(err).Str("request_id", requestID).Msg("status check failed")
		a.json(w, http.StatusOK, map[string]any{
			"status":  string(domain.StatusFailed),
			"message": "Status check failed, will retry...",
			"error":   err.Error(),
		})
		return
	}

	status, known := domain.ParseStatus(rawStatus)
	switch {
	case status == domain.StatusInQueue:
		a.json(w, http.StatusOK, map[string]any{
			"status":   string(status),
			"message":  "Job queued...",
			"progress": progress,
		})
	case status == domain.StatusInProgress:
		a.json(w, http.StatusOK, map[string]any{
			"status":   string(status),
			"message":  "Processing...",
			"progress": progress,
		})
	case status == domain.StatusComplete:
		a.statusComplete(w, r, model, requestID)
	case status == domain.StatusFailed:
		detail := firstString(progress, "error", "detail")
		if detail == "" {
			detail = "Unknown error"
		}
		a.json(w, http.StatusOK, map[string]any{
			"status":  string(domain.StatusFailed),
			"error":   "Generation job failed",
			"details": detail,
			"raw":     progress,
		})
	case !known:
		a.json(w, http.StatusOK, map[string]any{
			"status":  rawStatus,
			"message": "Status: " + rawStatus,
			"raw":     progress,
		})
	}
}

func (a *App) statusComplete(w http.ResponseWriter, r *http.Request, model catalog.Model, requestID string) {
	ctx := r.Context()
	payload, err := a.Gateway.FetchResult(ctx, model.ID, requestID)
	if err != nil {
		a.Logger.Warn().Err(err).Str("request_id", requestID).Msg("result fetch failed")
		a.json(w, http.StatusOK, map[string]any{
			"status":  string(domain.StatusFailed),
			"message": "Result fetch failed, will retry...",
			"error":   err.Error(),
		})
		return
	}
	if err := a.Results.Set(ctx, requestID, payload); err != nil {
		a.Logger.Warn().Err(err).Str("request_id", requestID).Msg("result cache write failed")
	}

	mediaURL := media.URL(payload)
	if mediaURL == "" {
		a.Logger.Error().Str("request_id", requestID).Msg("completed job has no media URL")
		a.json(w, http.StatusBadGateway, map[string]any{
			"error": "Job " + domain.ErrNoMediaURL.Error(),
			"raw":   payload,
		})
		return
	}

	a.json(w, http.StatusOK, map[string]any{
		"request_id": requestID,
		"status":     string(domain.StatusComplete),
		"media_url":  mediaURL,
		"media_type": string(model.Kind),
		"message":    "Generation completed successfully!",
		"raw":        payload,
	})
}
