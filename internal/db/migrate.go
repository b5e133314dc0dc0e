package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema for the single currencies table. price is NUMERIC(24,10): up to 24
// total digits with 10 fractional, never stored as a float. The currency
// and date_ indexes are part of the durable shape for future filtering.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS currencies (
		id       BIGSERIAL PRIMARY KEY,
		currency VARCHAR(32)    NOT NULL,
		date_    TIMESTAMP      NOT NULL,
		price    NUMERIC(24,10) NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS ix_currencies_currency ON currencies (currency)`,
	`CREATE INDEX IF NOT EXISTS ix_currencies_date_ ON currencies (date_)`,
}

// Migrate creates the schema if it does not exist yet. Callers gate this on
// configuration; production deployments normally run with it disabled.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
