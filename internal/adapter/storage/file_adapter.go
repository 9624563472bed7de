package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rl1809/inventory-bot/internal/core/domain"
)

const defaultInventoryFile = "inventory.json"

// FileAdapter stores the inventory as a single JSON document. Writes go to
// a temporary file in the same directory which is then renamed over the
// target, so a crash mid-write never leaves a truncated file behind.
type FileAdapter struct {
	path string
}

func NewFileAdapter(path string) (*FileAdapter, error) {
	if path == "" {
		path = defaultInventoryFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return &FileAdapter{path: path}, nil
}

func (f *FileAdapter) LoadSnapshot(ctx context.Context) (map[string]domain.Item, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.path, err)
	}
	return decodeSnapshot(data)
}

func (f *FileAdapter) SaveSnapshot(ctx context.Context, items map[string]domain.Item) error {
	data, err := encodeSnapshot(items)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("replace %s: %w", f.path, err)
	}
	return nil
}

func (f *FileAdapter) Close() error { return nil }
