package port

import (
	"context"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

type InventoryRepository interface {
	// LoadSnapshot returns the persisted item map, or nil when nothing has been saved yet
	LoadSnapshot(ctx context.Context) (map[string]domain.Item, error)

	// SaveSnapshot replaces the persisted item map with items
	SaveSnapshot(ctx context.Context, items map[string]domain.Item) error
}
