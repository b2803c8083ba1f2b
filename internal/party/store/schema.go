package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Unique constraint names; PostgresStore maps violations of these back to the
// offending field.
const (
	constraintCustID  = "party_cust_id_key"
	constraintEmailID = "party_email_id_key"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS party (
		id          BIGSERIAL PRIMARY KEY,
		cust_id     BIGINT NOT NULL,
		first_name  VARCHAR(100) NOT NULL,
		last_name   VARCHAR(100) NOT NULL,
		email_id    VARCHAR(255) NOT NULL,
		phone_no    VARCHAR(20) NOT NULL,
		version     BIGINT NOT NULL DEFAULT 1,
		created_ts  TIMESTAMPTZ NOT NULL,
		modified_ts TIMESTAMPTZ NOT NULL,
		CONSTRAINT ` + constraintCustID + ` UNIQUE (cust_id),
		CONSTRAINT ` + constraintEmailID + ` UNIQUE (email_id)
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id           UUID PRIMARY KEY,
		aggregate_id BIGINT NOT NULL,
		event_type   VARCHAR(64) NOT NULL,
		payload      JSONB NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL,
		published_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_unpublished_idx
		ON outbox (created_at) WHERE published_at IS NULL`,
}

// EnsureSchema creates the party and outbox tables when absent.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
