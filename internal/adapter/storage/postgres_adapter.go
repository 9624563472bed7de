package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

const defaultPostgresDSN = "postgres://localhost/inventory?sslmode=disable"

type PostgresAdapter struct {
	sqlSnapshot
}

func OpenPostgres(ctx context.Context, dsn string) (*PostgresAdapter, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS inventory (
		item_id TEXT PRIMARY KEY,
		stock INTEGER NOT NULL CHECK (stock >= 0),
		alarm_limit INTEGER
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure inventory table: %w", err)
	}
	return &PostgresAdapter{sqlSnapshot{
		db:     db,
		insert: `INSERT INTO inventory (item_id, stock, alarm_limit) VALUES ($1, $2, $3)`,
	}}, nil
}
