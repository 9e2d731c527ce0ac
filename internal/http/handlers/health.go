package handlers

import "net/http"

// Health reports liveness and whether provider credentials are loaded.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"fal_key_loaded": a.Gateway.HasCredentials(),
		"preview":        a.Gateway.KeyPreview(),
	})
}
