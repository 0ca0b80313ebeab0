package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	price_cents  BIGINT NOT NULL,
	currency     TEXT NOT NULL,
	stock        INT NOT NULL CHECK (stock >= 0),
	category     TEXT NOT NULL DEFAULT '',
	description  TEXT NOT NULL DEFAULT '',
	image_url    TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	id                     TEXT PRIMARY KEY,
	product_id             TEXT NOT NULL,
	quantity               INT NOT NULL,
	total_cents            BIGINT NOT NULL,
	currency               TEXT NOT NULL,
	first_name             TEXT NOT NULL DEFAULT '',
	last_name              TEXT NOT NULL DEFAULT '',
	address                TEXT NOT NULL DEFAULT '',
	city                   TEXT NOT NULL DEFAULT '',
	postal_code            TEXT NOT NULL DEFAULT '',
	customer_email         TEXT NOT NULL,
	idempotency_key        TEXT,
	status                 TEXT NOT NULL,
	gateway_transaction_id TEXT NOT NULL DEFAULT '',
	gateway_reference      TEXT NOT NULL DEFAULT '',
	error_message          TEXT NOT NULL DEFAULT '',
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS orders_idempotency_key_idx
	ON orders (idempotency_key) WHERE idempotency_key <> '';
CREATE INDEX IF NOT EXISTS orders_status_idx ON orders (status);
`

// Migrate creates the tables when they do not exist yet. Real deployments run
// versioned migrations; this keeps local and test environments bootable.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
