package repository

import (
	"fmt"

	"github.com/segyhp/ludoteca/internal/config"
	"github.com/segyhp/ludoteca/pkg/logger"
)

// NewSnapshotStore opens the store selected by STORAGE_DRIVER.
func NewSnapshotStore(cfg config.StorageConfig, log logger.Logger) (SnapshotStore, error) {
	switch cfg.Driver {
	case config.StorageDriverJSON:
		return NewJSONStore(cfg.Path, log), nil
	case config.StorageDriverSQLite:
		return NewSQLiteStore(cfg.Path, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
