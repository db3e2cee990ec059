package archive

import (
	"fmt"

	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
)

// NewClipStoreFromConfig creates a ClipStore based on the archive config type.
func NewClipStoreFromConfig(cfg config.ArchiveConfig, dbDir string, codec Codec) (kiosk.ClipStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryClipStore(), nil
	case "filesystem", "":
		if dbDir == "" {
			return nil, fmt.Errorf("filesystem archive requires db_dir to be set")
		}
		if codec == nil {
			return nil, fmt.Errorf("filesystem archive requires a video codec")
		}
		return NewFileSystemClipStore(dbDir, codec)
	default:
		return nil, fmt.Errorf("unknown archive type: %s", cfg.Type)
	}
}
