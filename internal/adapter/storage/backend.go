package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/inventory-bot/internal/port"
)

var ErrUnknownBackend = errors.New("unknown inventory backend")

const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendMySQL    = "mysql"
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendS3       = "s3"
)

// Backend is an inventory repository that holds a connection to release.
type Backend interface {
	port.InventoryRepository
	Close() error
}

type Options struct {
	Backend     string
	FilePath    string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
	RedisAddr   string
	S3          S3Config
}

// Open connects the configured inventory backend.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", BackendFile:
		return backend(NewFileAdapter(opts.FilePath))
	case BackendSQLite:
		return backend(NewSQLiteAdapter(ctx, opts.SQLitePath))
	case BackendMySQL:
		return backend(OpenMySQL(ctx, opts.MySQLDSN))
	case BackendPostgres:
		return backend(OpenPostgres(ctx, opts.PostgresDSN))
	case BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return NewRedisAdapter(rdb), nil
	case BackendS3:
		return backend(NewS3Adapter(ctx, opts.S3))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}

// backend keeps a failed constructor from yielding a non-nil interface
// around a nil pointer.
func backend[T Backend](b T, err error) (Backend, error) {
	if err != nil {
		return nil, err
	}
	return b, nil
}
