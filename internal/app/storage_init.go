package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/shopstate/internal/domain"
	"github.com/vladislavdragonenkov/shopstate/internal/storage/memory"
	"github.com/vladislavdragonenkov/shopstate/internal/storage/sqlite"
)

// runtimeDependencies содержит собранные зависимости хоста.
type runtimeDependencies struct {
	kv domain.KeyValueStore
}

// initRuntimeDependencies выбирает и готовит key-value хранилище по конфигу.
func initRuntimeDependencies(ctx context.Context, cfg Config, logger *log.Entry) (runtimeDependencies, error) {
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		logger.Info("using in-memory storage, state will not survive restart")
		return runtimeDependencies{kv: memory.NewKeyValueStore()}, nil

	case StorageDriverSQLite:
		if cfg.SQLitePath == "" {
			return runtimeDependencies{}, fmt.Errorf("sqlite storage driver requires SQLitePath")
		}
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return runtimeDependencies{}, fmt.Errorf("open sqlite storage: %w", err)
		}
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return runtimeDependencies{}, fmt.Errorf("prepare sqlite storage: %w", err)
		}
		logger.WithField("path", cfg.SQLitePath).Info("sqlite storage ready")
		return runtimeDependencies{kv: store}, nil

	default:
		return runtimeDependencies{}, fmt.Errorf("unsupported storage driver: %q", cfg.StorageDriver)
	}
}
