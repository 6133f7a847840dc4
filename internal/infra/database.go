package infra

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPostgresPool configures and returns a PostgreSQL connection pool.
func NewPostgresPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	if url == "" {
		return nil, fmt.Errorf("database url is required")
	}

	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return pool, nil
}

// schema holds the accounts and movements tables. Uniqueness of national id,
// email, phone and account number is enforced here; movements reference the
// account number and are never updated or deleted.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS accounts (
        id            BIGSERIAL PRIMARY KEY,
        national_id   TEXT NOT NULL UNIQUE,
        name          TEXT NOT NULL,
        email         TEXT NOT NULL UNIQUE,
        phone         TEXT NOT NULL UNIQUE,
        number        TEXT NOT NULL UNIQUE,
        balance       NUMERIC(18,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
        password_hash BYTEA NOT NULL,
        created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE TABLE IF NOT EXISTS movements (
        id             BIGSERIAL PRIMARY KEY,
        account_number TEXT NOT NULL REFERENCES accounts (number),
        kind           TEXT NOT NULL CHECK (kind IN ('credit', 'debit')),
        balance        NUMERIC(18,2) NOT NULL,
        description    TEXT NOT NULL DEFAULT '',
        created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
    )`,
	`CREATE INDEX IF NOT EXISTS movements_account_number_idx ON movements (account_number)`,
}

// EnsureSchema creates the tables at startup if they do not exist yet.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
