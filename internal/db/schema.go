package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS order_decisions (
		id            BIGSERIAL PRIMARY KEY,
		restaurant_id TEXT        NOT NULL,
		order_id      TEXT        NOT NULL,
		backend_id    TEXT        NOT NULL DEFAULT '',
		kind          TEXT        NOT NULL,
		prep_minutes  INTEGER     NOT NULL DEFAULT 0,
		reason        TEXT        NOT NULL DEFAULT '',
		automatic     BOOLEAN     NOT NULL DEFAULT FALSE,
		decided_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS order_decisions_decided_at_idx ON order_decisions (decided_at DESC)`,
	`CREATE TABLE IF NOT EXISTS outbox_tasks (
		id           UUID PRIMARY KEY,
		status       TEXT        NOT NULL,
		payload      JSONB       NOT NULL,
		topic        TEXT        NOT NULL,
		attempts     INTEGER     NOT NULL DEFAULT 0,
		last_error   TEXT,
		created_at   TIMESTAMPTZ NOT NULL,
		updated_at   TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_tasks_status_idx ON outbox_tasks (status, updated_at)`,
	`CREATE TABLE IF NOT EXISTS operator_audit (
		id          BIGSERIAL PRIMARY KEY,
		logged_at   TIMESTAMPTZ NOT NULL,
		operator    TEXT        NOT NULL DEFAULT '',
		method      TEXT        NOT NULL,
		path        TEXT        NOT NULL,
		action      TEXT        NOT NULL,
		status_code INTEGER     NOT NULL,
		order_id    TEXT        NOT NULL DEFAULT '',
		request     TEXT        NOT NULL DEFAULT '',
		response    TEXT        NOT NULL DEFAULT ''
	)`,
}

// EnsureSchema creates the journal tables when they are missing.
func EnsureSchema(ctx context.Context, database DB) error {
	for _, stmt := range schema {
		if _, err := database.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
