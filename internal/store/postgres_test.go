package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type stubExecutor struct {
	payloads map[string][]byte
	err      error
}

func newStubExecutor() *stubExecutor {
	return &stubExecutor{payloads: make(map[string][]byte)}
}

func (s *stubExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.err != nil {
		return pgconn.CommandTag{}, s.err
	}
	id := args[0].(string)
	raw := args[1].([]byte)
	s.payloads[id] = append([]byte(nil), raw...)
	return pgconn.CommandTag{}, nil
}

func (s *stubExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.err != nil {
		return stubRow{err: s.err}
	}
	id := args[0].(string)
	raw, ok := s.payloads[id]
	return stubRow{raw: raw, exists: ok}
}

func (s *stubExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

type stubRow struct {
	raw    []byte
	exists bool
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) == 0 {
		return errors.New("no dest")
	}
	switch ptr := dest[0].(type) {
	case *[]byte:
		if !r.exists {
			return pgx.ErrNoRows
		}
		*ptr = r.raw
		return nil
	case *bool:
		*ptr = r.exists
		return nil
	default:
		return errors.New("invalid dest")
	}
}

func TestPostgresRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := NewPostgres(newStubExecutor())

	if ok, err := p.Has(ctx, "req-1"); err != nil || ok {
		t.Fatalf("Has on empty store = %v, %v", ok, err)
	}

	payload := map[string]any{"video": map[string]any{"url": "https://fal.media/out.mp4"}}
	if err := p.Set(ctx, "req-1", payload); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok, err := p.Get(ctx, "req-1")
	if err != nil || !ok {
		t.Fatalf("Get after Set = %v, %v", ok, err)
	}
	if got["video"].(map[string]any)["url"] != "https://fal.media/out.mp4" {
		t.Fatalf("unexpected payload %v", got)
	}
	if ok, _ := p.Has(ctx, "req-1"); !ok {
		t.Fatal("Has after Set = false")
	}
}

func TestPostgresGetMissing(t *testing.T) {
	p := NewPostgres(newStubExecutor())
	if _, ok, err := p.Get(context.Background(), "missing"); err != nil || ok {
		t.Fatalf("Get missing = %v, %v", ok, err)
	}
}

func TestPostgresExecError(t *testing.T) {
	exec := newStubExecutor()
	exec.err = errors.New("connection reset")
	p := NewPostgres(exec)
	if err := p.Set(context.Background(), "req-2", map[string]any{"a": 1}); err == nil {
		t.Fatal("Set should surface exec error")
	}
}

func TestPostgresStoresJSON(t *testing.T) {
	exec := newStubExecutor()
	p := NewPostgres(exec)
	if err := p.Set(context.Background(), "req-3", map[string]any{"status": "COMPLETED"}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(exec.payloads["req-3"], &decoded); err != nil {
		t.Fatalf("stored payload is not valid JSON: %v", err)
	}
	if decoded["status"] != "COMPLETED" {
		t.Fatalf("unexpected stored payload %v", decoded)
	}
}
