package store

import (
	"context"
	"database/sql"
)

// The pair index is the load-bearing piece: at most one PENDING or
// ACCEPTED record may exist per unordered user pair, enforced at insert
// time rather than by application-level read-then-write. REJECTED rows
// are excluded so a rejection never blocks a later request.
const migration = `
CREATE TABLE IF NOT EXISTS users (
    id uuid PRIMARY KEY,
    email text NOT NULL,
    username text NOT NULL,
    first_name text NOT NULL DEFAULT '',
    last_name text NOT NULL DEFAULT '',
    bio text NOT NULL DEFAULT '',
    avatar text NOT NULL DEFAULT '',
    location text NOT NULL DEFAULT '',
    website text NOT NULL DEFAULT '',
    password_hash text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));

CREATE UNIQUE INDEX IF NOT EXISTS users_username_lower_unique
ON users (LOWER(username));

CREATE TABLE IF NOT EXISTS connections (
    id uuid PRIMARY KEY,
    sender_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    receiver_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    status text NOT NULL DEFAULT 'PENDING',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT connections_no_self CHECK (sender_id <> receiver_id)
);

CREATE UNIQUE INDEX IF NOT EXISTS connections_pair_active_unique
ON connections ((LEAST(sender_id, receiver_id)), (GREATEST(sender_id, receiver_id)))
WHERE status IN ('PENDING', 'ACCEPTED');

CREATE INDEX IF NOT EXISTS connections_receiver_pending_idx
ON connections (receiver_id, created_at DESC)
WHERE status = 'PENDING';

CREATE TABLE IF NOT EXISTS posts (
    id uuid PRIMARY KEY,
    author_id uuid NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    content text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS posts_author_created_idx
ON posts (author_id, created_at DESC);
`

// RunMigration applies the idempotent startup schema.
func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, migration)
	return err
}
