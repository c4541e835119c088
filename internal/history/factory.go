package history

import (
	"fmt"
	"os"
	"path/filepath"

	"nameforge/internal/config"
	"nameforge/internal/core"
)

// NewStoreFromConfig creates a HistoryStore based on the history config type.
func NewStoreFromConfig(cfg config.HistoryConfig, hostID string) (core.HistoryStore, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite history")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("creating history data dir: %w", err)
		}
		return Open(filepath.Join(cfg.DataDir, hostID+".db"))
	case "memory":
		return Open(":memory:")
	default:
		return nil, fmt.Errorf("unknown history type: %s", cfg.Type)
	}
}
