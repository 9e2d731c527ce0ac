package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"studio/internal/http/handlers"
	"studio/internal/middleware"
)

// NewRouter wires the route surface. lookup may be nil when GeoIP enrichment
// is not configured.
func NewRouter(app *handlers.App, lookup middleware.CountryLookup) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Locale(lookup))
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.CORS([]string{app.Config.PublicBaseURL}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/models", app.Models)

		r.Post("/generate", app.Generate)
		r.Get("/generate/status", app.Status)

		r.Post("/webhook", app.Webhook)
		r.Get("/webhook/check", app.WebhookCheck)

		r.Post("/upload", app.Upload)
		r.Post("/blob/upload-url", app.BlobUploadURL)

		r.Post("/prompt/copilot", app.Copilot)
		r.Get("/fal/fetch", app.Relay)
	})

	return r
}
