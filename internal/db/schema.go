package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the users table if it does not exist. The named
// unique constraint on email is what the registration workflow relies on
// under concurrent inserts, so it lives here and not in the workflow.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            UUID PRIMARY KEY,
			email         TEXT NOT NULL,
			password_hash TEXT NOT NULL,
			name          TEXT NOT NULL,
			role          TEXT NOT NULL,
			created_at    DATE NOT NULL,
			updated_at    DATE NOT NULL,
			CONSTRAINT users_email_uniq UNIQUE (email)
		)
	`)

	return err
}
