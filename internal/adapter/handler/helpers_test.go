package handler

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rl1809/inventory-bot/internal/adapter/storage"
	"github.com/rl1809/inventory-bot/internal/core/service"
)

const testPassword = "open-sesame"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// Mock UpdateDeduplicator
type mockDedupe struct {
	mu   sync.Mutex
	seen map[string]bool
	err  error
}

func (m *mockDedupe) SetIdempotency(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if m.seen[key] {
		return false, nil
	}
	m.seen[key] = true
	return true, nil
}

func newTestDispatcher(t *testing.T, dedupe *mockDedupe) (*Dispatcher, *service.InventoryStore) {
	t.Helper()
	repo, err := storage.NewFileAdapter(filepath.Join(t.TempDir(), "inventory.json"))
	require.NoError(t, err)

	store := service.NewInventoryStore(repo, discard)
	require.NoError(t, store.Load(context.Background()))

	engine := service.NewEngine(store, storage.NewMemorySessionRepository(), service.WithLogger(discard))
	if dedupe == nil {
		return NewDispatcher(engine, testPassword, nil, nil, discard), store
	}
	return NewDispatcher(engine, testPassword, dedupe, nil, discard), store
}
