package storage

import (
	"encoding/json"
	"fmt"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

// encodeSnapshot renders the persisted document: an object keyed by item
// name with {"quantity": int, "alarm_limit": int|null} values.
func encodeSnapshot(items map[string]domain.Item) ([]byte, error) {
	if items == nil {
		items = map[string]domain.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

func decodeSnapshot(data []byte) (map[string]domain.Item, error) {
	var items map[string]domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrCorruptSnapshot, err)
	}
	for name, item := range items {
		if item.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative quantity for %q", domain.ErrCorruptSnapshot, name)
		}
		item.Name = name
		items[name] = item
	}
	return items, nil
}
