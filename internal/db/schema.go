package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The unique index on email is the backstop for the duplicate check done
// in the register flow: the check and the insert are not atomic, so a
// racing insert must fail here.
const usersSchema = `
CREATE TABLE IF NOT EXISTS users (
	id                 TEXT PRIMARY KEY,
	email              TEXT NOT NULL UNIQUE,
	username           TEXT NOT NULL DEFAULT '',
	first_name         TEXT NOT NULL DEFAULT '',
	last_name          TEXT NOT NULL DEFAULT '',
	country            TEXT NOT NULL DEFAULT '',
	gender             TEXT NOT NULL DEFAULT '',
	pronoun            TEXT NOT NULL DEFAULT '',
	bio                TEXT NOT NULL DEFAULT '',
	avatar_asset_id    TEXT,
	avatar_url         TEXT,
	password_hash      TEXT NOT NULL,
	reset_token        TEXT,
	reset_token_expiry TIMESTAMPTZ,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS users_reset_token_idx ON users (reset_token) WHERE reset_token IS NOT NULL;
`

func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, timeout time.Duration) error {
	ctxExec, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := pool.Exec(ctxExec, usersSchema); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}
