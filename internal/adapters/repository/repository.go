package repository

import (
	"fmt"

	"github.com/watchlog/core/internal/infrastructure/config"
	"github.com/watchlog/core/internal/infrastructure/logger"
	"github.com/watchlog/core/internal/ports"
)

// Open returns the series store selected by cfg.Driver.
func Open(cfg config.StorageConfig, log *logger.Logger) (ports.SeriesStore, error) {
	switch cfg.Driver {
	case config.StorageDriverJSON, "":
		return NewJSONFileStore(cfg.Path, cfg.LockTimeout, log)
	case config.StorageDriverBolt:
		return NewBoltStore(cfg.Path, cfg.LockTimeout, log)
	case config.StorageDriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
