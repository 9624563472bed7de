package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/rl1809/inventory-bot/internal/core/domain"
	"github.com/rl1809/inventory-bot/internal/port"
)

var (
	ErrNotFound        = errors.New("item not found")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrPersistence     = errors.New("persist inventory")
)

// InventoryStore owns the authoritative in-memory item map and writes the
// whole map through to the repository after every mutation. Mutations are
// serialized by a single mutex; the write completes before the mutator
// returns.
type InventoryStore struct {
	repo   port.InventoryRepository
	logger *slog.Logger

	mu    sync.Mutex
	items map[string]domain.Item
}

func NewInventoryStore(repo port.InventoryRepository, logger *slog.Logger) *InventoryStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &InventoryStore{
		repo:   repo,
		logger: logger.With("component", "inventory"),
		items:  make(map[string]domain.Item),
	}
}

// Load hydrates the store from the repository. A missing or corrupt snapshot
// leaves the store empty; only repository I/O failures are returned.
func (s *InventoryStore) Load(ctx context.Context) error {
	items, err := s.repo.LoadSnapshot(ctx)
	if errors.Is(err, domain.ErrCorruptSnapshot) {
		s.logger.Warn("ignoring corrupt inventory snapshot", "error", err)
		items, err = nil, nil
	}
	if err != nil {
		return fmt.Errorf("load inventory: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = domain.CloneItems(items)
	s.logger.Info("inventory loaded", "items", len(s.items))
	return nil
}

// Add increments an existing item by qty. With isNew, or when the item is
// absent and isNew is set, the item is (re)created with quantity qty and no
// alarm limit.
func (s *InventoryStore) Add(ctx context.Context, name string, qty int, isNew bool) error {
	if qty < 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, name, func(item domain.Item, ok bool) (domain.Item, bool, error) {
		if isNew {
			return domain.Item{Name: name, Quantity: qty}, true, nil
		}
		if !ok {
			return item, false, ErrNotFound
		}
		item.Quantity += qty
		return item, true, nil
	})
}

// Put creates or overwrites an item, including its alarm limit, as one mutation.
func (s *InventoryStore) Put(ctx context.Context, item domain.Item) error {
	if item.Quantity < 0 || (item.AlarmLimit != nil && *item.AlarmLimit < 0) {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, item.Name, func(domain.Item, bool) (domain.Item, bool, error) {
		return item.Clone(), true, nil
	})
}

// Remove decrements an item, clamping at zero, or deletes it outright when
// totally is set. The returned item reflects the state after the change.
func (s *InventoryStore) Remove(ctx context.Context, name string, qty int, totally bool) (domain.Item, error) {
	if qty < 0 {
		return domain.Item{}, ErrInvalidQuantity
	}
	var result domain.Item
	err := s.mutate(ctx, name, func(item domain.Item, ok bool) (domain.Item, bool, error) {
		if !ok {
			return item, false, ErrNotFound
		}
		if totally {
			result = domain.Item{Name: name}
			return item, false, nil
		}
		item.Quantity = max(item.Quantity-qty, 0)
		result = item.Clone()
		return item, true, nil
	})
	if err != nil {
		return domain.Item{}, err
	}
	return result, nil
}

func (s *InventoryStore) UpdateAlarmLimit(ctx context.Context, name string, limit int) error {
	if limit < 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, name, func(item domain.Item, ok bool) (domain.Item, bool, error) {
		if !ok {
			return item, false, ErrNotFound
		}
		item.AlarmLimit = domain.Limit(limit)
		return item, true, nil
	})
}

func (s *InventoryStore) CheckAlarm(name string) (bool, error) {
	item, ok := s.Get(name)
	if !ok {
		return false, ErrNotFound
	}
	return item.Low(), nil
}

func (s *InventoryStore) Get(name string) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[name]
	if !ok {
		return domain.Item{}, false
	}
	return item.Clone(), true
}

// List returns every item sorted by name.
func (s *InventoryStore) List() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *InventoryStore) Names() []string {
	items := s.List()
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return names
}

func (s *InventoryStore) Snapshot() map[string]domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// mutate applies fn to the named item under the lock and persists the full
// map. fn returns the new item and whether it should exist afterwards. On a
// persistence failure the previous item is restored.
func (s *InventoryStore) mutate(ctx context.Context, name string, fn func(item domain.Item, ok bool) (domain.Item, bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.items[name]
	next, keep, err := fn(prev.Clone(), existed)
	if err != nil {
		return err
	}

	if keep {
		next.Name = name
		s.items[name] = next
	} else {
		delete(s.items, name)
	}

	if err := s.repo.SaveSnapshot(ctx, domain.CloneItems(s.items)); err != nil {
		if existed {
			s.items[name] = prev
		} else {
			delete(s.items, name)
		}
		s.logger.Error("inventory write failed, change rolled back", "item", name, "error", err)
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}
