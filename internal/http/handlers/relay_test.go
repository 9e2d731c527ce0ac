package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func TestRelayableHost(t *testing.T) {
	cases := []struct {
		host string
		want bool
	}{
		{"fal.run", true},
		{"queue.fal.run", true},
		{"rest.alpha.fal.ai", true},
		{"fal.media", true},
		{"v3.fal.media", true},
		{"fal-ai.fal.run", true},
		{"example.com", false},
		{"fal.run.evil.com", false},
		{"notfal.media.example.com", false},
	}
	for _, tc := range cases {
		if got := relayableHost(tc.host); got != tc.want {
			t.Errorf("relayableHost(%q) = %v, want %v", tc.host, got, tc.want)
		}
	}
}

func TestRelayRejectsForeignHost(t *testing.T) {
	gw := newStubGateway()
	app := newTestApp(gw)

	target := "/api/fal/fetch?url=" + url.QueryEscape("https://example.com/steal-key")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.Relay(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if gw.count("relay") != 0 {
		t.Errorf("foreign host must never be relayed")
	}
}

func TestRelayPassesThrough(t *testing.T) {
	gw := newStubGateway()
	app := newTestApp(gw)

	target := "/api/fal/fetch?url=" + url.QueryEscape("https://queue.fal.run/fal-ai/flux/dev/requests/req-1/status")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	app.Relay(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type not passed through: %q", ct)
	}
	if gw.count("relay") != 1 {
		t.Errorf("expected 1 relay call, got %d", gw.count("relay"))
	}
}

func TestRelayMissingURL(t *testing.T) {
	app := newTestApp(newStubGateway())
	req := httptest.NewRequest(http.MethodGet, "/api/fal/fetch", nil)
	rec := httptest.NewRecorder()
	app.Relay(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
