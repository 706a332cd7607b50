package postgres

import (
	"context"
	"fmt"
)

// Migrate applies the schema. Statements are idempotent so the service can
// run them on every start.
func (db *DB) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS pgcrypto`,

		`CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			username      TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			is_online     BOOLEAN NOT NULL DEFAULT FALSE,
			last_seen     TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE TABLE IF NOT EXISTS messages (
			id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			from_user  TEXT NOT NULL,
			to_user    TEXT NOT NULL,
			text       TEXT NOT NULL,
			read       BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_pair
			ON messages (from_user, to_user, created_at)`,

		`CREATE INDEX IF NOT EXISTS idx_messages_unread
			ON messages (to_user, from_user) WHERE read = FALSE`,
	}

	for _, stmt := range stmts {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
