// Package store holds the last-known provider result per request id. A job
// id is only ever completed once by the provider, so concurrent writers on
// the same key are safe with last-write-wins semantics.
package store

import "context"

// ResultStore maps a provider request id to the raw result payload last
// received for it, via webhook push or direct fetch.
type ResultStore interface {
	Set(ctx context.Context, requestID string, payload map[string]any) error
	Get(ctx context.Context, requestID string) (map[string]any, bool, error)
	Has(ctx context.Context, requestID string) (bool, error)
}
