package handlers

import (
	"encoding/json"
	"net/http"

	"studio/internal/catalog"
	"studio/internal/prompt"
)

type copilotRequest struct {
	UserText   string `json:"userText"`
	ModelID    string `json:"modelId"`
	CineTokens string `json:"cineTokens"`
}

// Copilot composes one prompt optimized for the chosen model.
func (a *App) Copilot(w http.ResponseWriter, r *http.Request) {
	var req copilotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "invalid payload")
		return
	}
	model, err := catalog.Lookup(req.ModelID)
	if err != nil {
		a.error(w, http.StatusBadRequest, "Unknown model")
		return
	}

	composed, err := a.Enhancer.Compose(r.Context(), prompt.ComposeRequest{
		UserText:   req.UserText,
		CineTokens: req.CineTokens,
		ModelName:  model.Name,
		Kind:       model.Kind,
		Suggest:    model.Suggest,
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("prompt compose failed")
		a.error(w, http.StatusInternalServerError, "Failed to compose prompt")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"prompt": composed})
}
