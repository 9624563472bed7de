package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

type SQLiteAdapter struct {
	sqlSnapshot
}

func NewSQLiteAdapter(ctx context.Context, path string) (*SQLiteAdapter, error) {
	if path == "" {
		path = "inventory.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; the store already serializes saves
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS inventory (
		item_id TEXT PRIMARY KEY,
		stock INTEGER NOT NULL,
		alarm_limit INTEGER
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create inventory table: %w", err)
	}
	return &SQLiteAdapter{sqlSnapshot{
		db:     db,
		insert: `INSERT INTO inventory (item_id, stock, alarm_limit) VALUES (?, ?, ?)`,
	}}, nil
}
