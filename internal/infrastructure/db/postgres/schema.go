package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role_id       BIGINT NOT NULL REFERENCES roles(id) ON DELETE RESTRICT,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id            BIGSERIAL PRIMARY KEY,
		title         TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'open',
		assignee_id   BIGINT REFERENCES users(id) ON DELETE RESTRICT,
		supervisor_id BIGINT REFERENCES users(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS tickets_assignee_idx ON tickets (assignee_id)`,
	`CREATE INDEX IF NOT EXISTS tickets_supervisor_idx ON tickets (supervisor_id)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS users (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		email         TEXT NOT NULL UNIQUE,
		first_name    TEXT NOT NULL,
		last_name     TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role_id       INTEGER NOT NULL REFERENCES roles(id) ON DELETE RESTRICT,
		created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tickets (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		title         TEXT NOT NULL,
		status        TEXT NOT NULL DEFAULT 'open',
		assignee_id   INTEGER REFERENCES users(id) ON DELETE RESTRICT,
		supervisor_id INTEGER REFERENCES users(id) ON DELETE RESTRICT
	)`,
	`CREATE INDEX IF NOT EXISTS tickets_assignee_idx ON tickets (assignee_id)`,
	`CREATE INDEX IF NOT EXISTS tickets_supervisor_idx ON tickets (supervisor_id)`,
}

// DefaultRoles are created by EnsureSchema when missing.
var DefaultRoles = []string{"admin", "agent"}

// EnsureSchema creates the tables the store needs and seeds DefaultRoles.
// Every statement is idempotent.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts := postgresSchema
	if db.DriverName() == driverSQLite {
		stmts = sqliteSchema
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	seed := db.Rebind(`INSERT INTO roles (name) VALUES (?) ON CONFLICT (name) DO NOTHING`)
	for _, name := range DefaultRoles {
		if _, err := db.ExecContext(ctx, seed, name); err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	return nil
}
