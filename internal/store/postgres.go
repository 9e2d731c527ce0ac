package store

import (
	"context"
	"encoding/json"
	"fmt"

	"studio/internal/infra"
)

const (
	sqlUpsertResult = `
INSERT INTO webhook_results (request_id, payload, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (request_id) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`

	sqlSelectResult = `
SELECT payload FROM webhook_results WHERE request_id = $1`

	sqlResultExists = `
SELECT EXISTS (SELECT 1 FROM webhook_results WHERE request_id = $1)`
)

// Postgres shares the result cache across processes for deployments running
// more than one replica, where the provider's webhook may land on a
// different instance than the one serving a client's polls. It carries no
// durability promise beyond that.
type Postgres struct {
	sql infra.SQLExecutor
}

func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{sql: sql}
}

func (p *Postgres) Set(ctx context.Context, requestID string, payload map[string]any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("store: encode payload: %w", err)
	}
	if _, err := p.sql.Exec(ctx, sqlUpsertResult, requestID, raw); err != nil {
		return fmt.Errorf("store: upsert result: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, requestID string) (map[string]any, bool, error) {
	row := p.sql.QueryRow(ctx, sqlSelectResult, requestID)
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		if infra.IsNoRows(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("store: select result: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false, fmt.Errorf("store: decode payload: %w", err)
	}
	return payload, true, nil
}

func (p *Postgres) Has(ctx context.Context, requestID string) (bool, error) {
	row := p.sql.QueryRow(ctx, sqlResultExists, requestID)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("store: exists check: %w", err)
	}
	return exists, nil
}

var _ ResultStore = (*Postgres)(nil)
