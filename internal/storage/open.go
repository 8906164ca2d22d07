package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/redis/go-redis/v9"

	"storefront/internal/config"
	"storefront/internal/domain"
)

// Store is a KV that owns a connection.
type Store interface {
	domain.KV
	io.Closer
}

// Open returns the KV selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StorageConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		return NewSQLite(filepath.Join(cfg.DataDir, "storefront.db"))
	case "postgres", "mysql":
		return NewSQL(cfg.Driver, cfg.DSN)
	case "mongo":
		return NewMongoKV(ctx, cfg.DSN, cfg.Database)
	case "redis":
		opts, err := redis.ParseURL(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("parse redis dsn: %w", err)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		return NewRedisKV(client), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}
