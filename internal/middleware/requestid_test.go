package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func runRequestID(t *testing.T, inbound string) (header, fromCtx string) {
	t.Helper()
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/healthz", nil)
	if inbound != "" {
		req.Header.Set("X-Request-ID", inbound)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec.Header().Get("X-Request-ID"), fromCtx
}

func TestRequestIDGenerated(t *testing.T) {
	header, fromCtx := runRequestID(t, "")
	if header == "" || header != fromCtx {
		t.Fatalf("header %q and context %q must carry the same id", header, fromCtx)
	}
	if _, err := uuid.Parse(header); err != nil {
		t.Errorf("generated id is not a uuid: %q", header)
	}
}

func TestRequestIDEchoesValidUUID(t *testing.T) {
	inbound := uuid.NewString()
	header, fromCtx := runRequestID(t, inbound)
	if header != inbound || fromCtx != inbound {
		t.Errorf("valid inbound id must be kept: header %q ctx %q", header, fromCtx)
	}
}

func TestRequestIDReplacesGarbage(t *testing.T) {
	header, _ := runRequestID(t, "not-a-uuid\n\"injected\"")
	if _, err := uuid.Parse(header); err != nil {
		t.Errorf("garbage inbound id must be replaced with a uuid, got %q", header)
	}
}
