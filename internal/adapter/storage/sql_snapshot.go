package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

// sqlSnapshot keeps one row per item in the inventory table and replaces
// the whole table inside a transaction on every save. Dialects differ only
// in DDL and placeholders.
type sqlSnapshot struct {
	db     *sql.DB
	insert string
}

func (s *sqlSnapshot) LoadSnapshot(ctx context.Context) (map[string]domain.Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT item_id, stock, alarm_limit FROM inventory`)
	if err != nil {
		return nil, fmt.Errorf("query inventory: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items map[string]domain.Item
	for rows.Next() {
		var (
			item  domain.Item
			limit sql.NullInt64
		)
		if err := rows.Scan(&item.Name, &item.Quantity, &limit); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		if limit.Valid {
			item.AlarmLimit = domain.Limit(int(limit.Int64))
		}
		if items == nil {
			items = make(map[string]domain.Item)
		}
		items[item.Name] = item
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory: %w", err)
	}
	return items, nil
}

func (s *sqlSnapshot) SaveSnapshot(ctx context.Context, items map[string]domain.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM inventory`); err != nil {
		return fmt.Errorf("clear inventory: %w", err)
	}
	for name, item := range items {
		var limit sql.NullInt64
		if item.AlarmLimit != nil {
			limit = sql.NullInt64{Int64: int64(*item.AlarmLimit), Valid: true}
		}
		if _, err := tx.ExecContext(ctx, s.insert, name, item.Quantity, limit); err != nil {
			return fmt.Errorf("insert %q: %w", name, err)
		}
	}

	return tx.Commit()
}

func (s *sqlSnapshot) DB() *sql.DB { return s.db }

func (s *sqlSnapshot) Close() error { return s.db.Close() }
