package handlers

import (
	"net/http"
	"net/url"
	"strings"
)

// relayableHost limits the authenticated pass-through to provider hosts so
// the API key is never attached to requests leaving the provider's domain.
func relayableHost(host string) bool {
	host = strings.ToLower(host)
	return host == "fal.run" || host == "queue.fal.run" || host == "rest.alpha.fal.ai" ||
		host == "fal.media" || strings.HasSuffix(host, ".fal.media") ||
		strings.HasSuffix(host, ".fal.run") || strings.HasSuffix(host, ".fal.ai")
}

// Relay proxies a GET to a provider URL with credentials attached, passing
// the response through verbatim. Serves the debug console.
func (a *App) Relay(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		a.error(w, http.StatusBadRequest, "missing url")
		return
	}
	parsed, err := url.Parse(target)
	if err != nil || !relayableHost(parsed.Host) {
		a.error(w, http.StatusBadRequest, "url must point at the provider")
		return
	}

	body, status, contentType, err := a.Gateway.Relay(r.Context(), target)
	if err != nil {
		a.json(w, http.StatusBadGateway, map[string]any{
			"error":   "relay failed",
			"details": err.Error(),
		})
		return
	}
	if contentType == "" {
		contentType = "text/plain"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
