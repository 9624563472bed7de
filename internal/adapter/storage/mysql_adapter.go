package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLAdapter struct {
	sqlSnapshot
}

// NewMySQLAdapter wraps an open connection and makes sure the inventory
// table exists.
func NewMySQLAdapter(ctx context.Context, db *sql.DB) (*MySQLAdapter, error) {
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS inventory (
			item_id VARCHAR(255) NOT NULL PRIMARY KEY,
			stock INT NOT NULL,
			alarm_limit INT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`); err != nil {
		return nil, fmt.Errorf("create inventory table: %w", err)
	}
	return &MySQLAdapter{sqlSnapshot{
		db:     db,
		insert: `INSERT INTO inventory (item_id, stock, alarm_limit) VALUES (?, ?, ?)`,
	}}, nil
}

func OpenMySQL(ctx context.Context, dsn string) (*MySQLAdapter, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	adapter, err := NewMySQLAdapter(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return adapter, nil
}
