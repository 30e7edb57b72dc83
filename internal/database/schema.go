package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Execer runs a statement. *pgxpool.Pool and pgx.Tx satisfy it.
type Execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// SchemaStatements are applied in order by EnsureSchema.
var SchemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS settlement_files (
		load_id     UUID PRIMARY KEY,
		file_name   TEXT NOT NULL,
		checksum    TEXT NOT NULL UNIQUE,
		report_date DATE NOT NULL,
		row_count   INTEGER NOT NULL,
		loaded_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS settlements (
		report_date    DATE NOT NULL,
		product        TEXT NOT NULL,
		kind           TEXT NOT NULL,
		option_type    TEXT NOT NULL,
		contract_month TEXT NOT NULL,
		strike         DOUBLE PRECISION NOT NULL,
		open           DOUBLE PRECISION NOT NULL,
		high           DOUBLE PRECISION NOT NULL,
		low            DOUBLE PRECISION NOT NULL,
		last           DOUBLE PRECISION NOT NULL,
		settle         DOUBLE PRECISION NOT NULL,
		change         DOUBLE PRECISION NOT NULL,
		prev_settle    DOUBLE PRECISION NOT NULL,
		volume         BIGINT NOT NULL,
		prev_volume    BIGINT NOT NULL,
		open_interest  BIGINT NOT NULL,
		load_id        UUID NOT NULL REFERENCES settlement_files (load_id),
		PRIMARY KEY (report_date, product, kind, option_type, contract_month, strike)
	)`,
	`CREATE INDEX IF NOT EXISTS settlements_product_date_idx
		ON settlements (product, report_date)`,
}

// EnsureSchema creates the settlement tables if they do not exist.
func EnsureSchema(ctx context.Context, db Execer) error {
	for i, stmt := range SchemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
