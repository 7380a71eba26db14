package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/dialwise/directory/common/db"
)

// Schema for the postgres store backend. The partial unique index
// enforces the one-draft-and-one-pending-per-field invariant at the
// storage layer as well.
const schema = `
CREATE TABLE IF NOT EXISTS service_entry (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	note       TEXT NOT NULL DEFAULT '',
	telcos     JSONB NOT NULL DEFAULT '{}'::jsonb,
	active     BOOLEAN NOT NULL DEFAULT TRUE,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS change_request (
	id           UUID PRIMARY KEY,
	service_id   TEXT NOT NULL,
	field        TEXT NOT NULL,
	old_value    TEXT NOT NULL DEFAULT '',
	new_value    TEXT NOT NULL DEFAULT '',
	requested_by TEXT NOT NULL,
	requested_at TIMESTAMPTZ NOT NULL,
	status       TEXT NOT NULL,
	reviewed_by  TEXT,
	reviewed_at  TIMESTAMPTZ,
	comments     TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS change_request_live_slot
	ON change_request (service_id, field, status)
	WHERE status IN ('draft', 'pending');

CREATE INDEX IF NOT EXISTS change_request_service
	ON change_request (service_id);
`

// InitSchema creates the directory tables if they do not exist.
// Wired as the bootstrap DB init hook.
func InitSchema(database *db.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := database.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
