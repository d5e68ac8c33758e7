package persist

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/nibzard/todo-go/internal/config"
)

// OpenBackend creates the backend selected by cfg.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryBackend(), nil
	case config.BackendFile, "":
		return NewFileBackend(cfg.DataDir), nil
	case config.BackendRedis:
		b, err := NewRedisBackend(ctx, cfg.Redis.URL, cfg.Redis.Prefix, cfg.RedisTimeout())
		if err != nil {
			return nil, err
		}
		return b, nil
	case config.BackendSQLite:
		b, err := NewSQLiteBackend(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

// Open creates the configured backend and binds it to cfg.StorageKey.
func Open(ctx context.Context, cfg *config.Config, logger *log.Logger) (*Adapter, error) {
	backend, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	return NewAdapter(backend, cfg.StorageKey, logger), nil
}
