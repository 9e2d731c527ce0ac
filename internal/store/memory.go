package store

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Memory is the default in-process result store. TTL 0 keeps entries for the
// lifetime of the process, which matches how webhooks are consumed (one
// write, a handful of reads shortly after); a positive TTL bounds growth for
// long-lived deployments.
type Memory struct {
	cache *gocache.Cache
}

// NewMemory creates a memory store. ttl <= 0 disables expiration.
func NewMemory(ttl time.Duration) *Memory {
	expiration := gocache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = ttl
	}
	return &Memory{cache: gocache.New(expiration, cleanup)}
}

func (m *Memory) Set(ctx context.Context, requestID string, payload map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.cache.Set(requestID, payload, gocache.DefaultExpiration)
	return nil
}

func (m *Memory) Get(ctx context.Context, requestID string) (map[string]any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	v, ok := m.cache.Get(requestID)
	if !ok {
		return nil, false, nil
	}
	payload, ok := v.(map[string]any)
	if !ok {
		return nil, false, nil
	}
	return payload, true, nil
}

func (m *Memory) Has(ctx context.Context, requestID string) (bool, error) {
	_, ok, err := m.Get(ctx, requestID)
	return ok, err
}

var _ ResultStore = (*Memory)(nil)
