package storage

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

func TestSQLiteAdapter_RoundTrip(t *testing.T) {
	ctx := context.Background()
	adapter, err := NewSQLiteAdapter(ctx, filepath.Join(t.TempDir(), "inventory.db"))
	if err != nil {
		t.Fatalf("NewSQLiteAdapter failed: %v", err)
	}
	defer adapter.Close()

	empty, err := adapter.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot on empty table failed: %v", err)
	}
	if empty != nil {
		t.Errorf("expected nil for empty table, got %v", empty)
	}

	if err := adapter.SaveSnapshot(ctx, sampleItems()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	got, err := adapter.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if !reflect.DeepEqual(got, sampleItems()) {
		t.Errorf("round trip mismatch: got %+v", got)
	}
}

func TestSQLiteAdapter_SaveReplacesRows(t *testing.T) {
	ctx := context.Background()
	adapter, err := NewSQLiteAdapter(ctx, filepath.Join(t.TempDir(), "inventory.db"))
	if err != nil {
		t.Fatalf("NewSQLiteAdapter failed: %v", err)
	}
	defer adapter.Close()

	adapter.SaveSnapshot(ctx, sampleItems())
	if err := adapter.SaveSnapshot(ctx, map[string]domain.Item{"Widget": {Name: "Widget", Quantity: 4}}); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	var count int
	adapter.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row after replace, got %d", count)
	}
}
