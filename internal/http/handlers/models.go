package handlers

import (
	"net/http"

	"studio/internal/catalog"
)

// Models lists the catalog for the client's model picker.
func (a *App) Models(w http.ResponseWriter, r *http.Request) {
	items := make([]map[string]any, 0)
	for _, m := range catalog.All() {
		items = append(items, map[string]any{
			"id":             m.ID,
			"name":           m.Name,
			"type":           string(m.Kind),
			"strategy":       string(m.Strategy),
			"default_params": m.DefaultParams,
			"requires_image": m.RequiresImage,
			"requires_video": m.RequiresVideo,
			"requires_audio": m.RequiresAudio,
			"suggest":        m.Suggest,
		})
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
