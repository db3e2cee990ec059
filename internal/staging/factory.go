package staging

import (
	"fmt"

	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
)

// DefaultMaxSize is the default maximum staging area size (512MB).
const DefaultMaxSize int64 = 512 * 1024 * 1024

// NewStagingAreaFromConfig creates a StagingArea for files under root based on the config type.
func NewStagingAreaFromConfig(cfg config.StagingConfig, root string, clock kiosk.Clock, ids kiosk.IDGenerator) (kiosk.StagingArea, error) {
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}

	switch cfg.Type {
	case "memory":
		return NewMemoryStagingArea(root, maxSize, clock, ids), nil
	case "filesystem", "":
		if cfg.StagingDir == "" {
			return nil, fmt.Errorf("filesystem staging area requires staging_dir to be set")
		}
		return NewFileSystemStagingArea(root, cfg.StagingDir, maxSize, clock, ids)
	default:
		return nil, fmt.Errorf("unknown staging area type: %s", cfg.Type)
	}
}
