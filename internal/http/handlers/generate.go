package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"studio/internal/catalog"
	"studio/internal/domain"
	"studio/internal/fal"
	"studio/internal/media"
	"studio/internal/middleware"
)

type generateRequest struct {
	ModelID string         `json:"modelId"`
	Prompt  string         `json:"prompt"`
	Params  map[string]any `json:"params"`
}

var queuedMessages = map[string]string{
	"en": "Job queued. This may take a few minutes...",
	"es": "Trabajo en cola. Esto puede tardar unos minutos...",
}

func queuedMessage(locale string) string {
	if msg, ok := queuedMessages[locale]; ok {
		return msg
	}
	return queuedMessages["en"]
}

// Generate dispatches a submission to the provider using the strategy the
// model's descriptor declares: block for the result on fast models, enqueue
// with a webhook on long-running ones.
func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	model, err := catalog.Lookup(req.ModelID)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Unknown model")
		return
	}

	input := model.MergedParams(req.Params)
	input["prompt"] = req.Prompt

	switch model.Strategy {
	case catalog.StrategyQueue:
		a.generateQueued(w, r, model, input)
	default:
		a.generateSync(w, r, model, input)
	}
}

func (a *App) generateSync(w http.ResponseWriter, r *http.Request, model catalog.Model, input map[string]any) {
	result, err := a.Gateway.SubscribeAndWait(r.Context(), model.ID, input)
	if err != nil {
		var execErr *fal.ExecutionError
		if errors.As(err, &execErr) {
			a.Logger.Error().Err(err).Str("model", model.ID).Msg("provider execution failed")
			a.json(w, http.StatusInternalServerError, map[string]any{
				"error":   "Failed to generate media",
				"details": execErr.Body,
				"status":  string(domain.StatusFailed),
			})
			return
		}
		a.Logger.Error().Err(err).Str("model", model.ID).Msg("provider call failed")
		a.json(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to generate media",
			"details": err.Error(),
		})
		return
	}

	mediaURL := media.URL(result)
	if mediaURL == "" {
		a.Logger.Error().Str("model", model.ID).Msg("no media URL in completed result")
		a.json(w, http.StatusBadGateway, map[string]any{
			"error": domain.ErrNoMediaURL.Error(),
			"raw":   result,
		})
		return
	}

	requestID := firstString(result, "request_id", "requestId")
	if requestID == "" {
		requestID = "completed"
	}
	a.json(w, http.StatusOK, map[string]any{
		"request_id": requestID,
		"status":     string(domain.StatusComplete),
		"media_url":  mediaURL,
		"media_type": string(model.Kind),
		"raw":        result,
	})
}

func (a *App) generateQueued(w http.ResponseWriter, r *http.Request, model catalog.Model, input map[string]any) {
	ctx := r.Context()

	if err := model.ValidateInput(input); err != nil {
		a.error(w, http.StatusBadRequest, err.Error())
		return
	}

	// Cost control: every declared input is probed and checked against the
	// model's limits locally before any provider submission.
	for _, key := range model.RequiredInputKeys() {
		assetURL := input[key].(string)
		contentType, size, err := a.Gateway.ProbeAsset(ctx, assetURL)
		if err != nil {
			a.error(w, http.StatusBadRequest, key+" is not accessible")
			return
		}
		if err := model.CheckAsset(contentType, size); err != nil {
			a.error(w, http.StatusBadRequest, err.Error())
			return
		}
		hosted, err := a.Gateway.EnsureHostedURL(ctx, assetURL)
		if err != nil {
			a.error(w, http.StatusBadRequest, "unable to stage "+key+" on provider storage")
			return
		}
		input[key] = hosted
	}

	webhookURL := a.Config.PublicBaseURL + "/api/webhook?model_id=" + url.QueryEscape(model.ID)
	requestID, raw, err := a.Gateway.SubmitQueueJob(ctx, model.ID, input, webhookURL)
	if err != nil {
		var submitErr *fal.SubmitError
		if errors.As(err, &submitErr) {
			a.Logger.Warn().Int("status", submitErr.StatusCode).Str("model", model.ID).Msg("submit rejected")
			a.json(w, submitErr.StatusCode, map[string]any{
				"error":   submitErr.UserMessage(),
				"details": submitErr.Body,
				"stage":   "submit",
			})
			return
		}
		a.Logger.Error().Err(err).Str("model", model.ID).Msg("submit failed")
		a.json(w, http.StatusInternalServerError, map[string]any{
			"error":   "Failed to generate media",
			"details": err.Error(),
		})
		return
	}

	locale := middleware.LocaleFromContext(ctx)
	a.json(w, http.StatusOK, map[string]any{
		"request_id": requestID,
		"status":     string(domain.StatusInQueue),
		"message":    queuedMessage(locale),
		"poll_url":   "/api/generate/status?request_id=" + url.QueryEscape(requestID) + "&model_id=" + url.QueryEscape(model.ID),
		"raw":        raw,
	})
}

func firstString(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := payload[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
