package storage

import (
	"fmt"

	"github.com/opsim/engine/internal/config"
	"github.com/opsim/engine/internal/logging"
	"github.com/opsim/engine/internal/storage/memory"
	"github.com/opsim/engine/internal/storage/postgres"
	sqlitestorage "github.com/opsim/engine/internal/storage/sqlite"
)

// NewBackend creates a storage backend based on configuration.
func NewBackend(cfg config.StorageConfig, logManager *logging.SlogManager) (Backend, error) {
	switch cfg.Type {
	case "postgres":
		return postgres.New(logManager)
	case "sqlite":
		return sqlitestorage.New(sqlitestorage.Config{
			DumpInterval: cfg.Sqlite.DumpInterval,
			DumpPath:     cfg.Sqlite.DumpPath,
		}, logManager)
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
