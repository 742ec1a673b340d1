package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Уникальные индексы на original_url и short_url - единственная
// авторитетная защита от гонки check-then-insert в генераторе кодов.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	email         TEXT NOT NULL,
	first_name    TEXT NOT NULL DEFAULT '',
	last_name     TEXT NOT NULL DEFAULT '',
	password_hash TEXT NOT NULL,
	is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT users_email_key UNIQUE (email)
);

CREATE TABLE IF NOT EXISTS links (
	id            BIGSERIAL PRIMARY KEY,
	original_url  TEXT NOT NULL,
	short_url     TEXT NOT NULL,
	clicks        BIGINT NOT NULL DEFAULT 0,
	expires_at    TIMESTAMPTZ,
	is_registered BOOLEAN NOT NULL DEFAULT FALSE,
	owner_id      BIGINT REFERENCES users(id) ON DELETE SET NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT links_original_url_key UNIQUE (original_url),
	CONSTRAINT links_short_url_key UNIQUE (short_url)
);
`

// Migrate применяет схему при старте. Идемпотентно.
func Migrate(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
