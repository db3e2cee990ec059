package ledger

import (
	"fmt"

	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
)

// NewLedgerStoreFromConfig creates a LedgerStore based on the ledger config type.
func NewLedgerStoreFromConfig(cfg config.LedgerConfig, dbDir string) (kiosk.LedgerStore, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryStore(), nil
	case "xlsx", "":
		if dbDir == "" {
			return nil, fmt.Errorf("xlsx ledger requires db_dir to be set")
		}
		return NewXLSXStore(dbDir), nil
	default:
		return nil, fmt.Errorf("unknown ledger type: %s", cfg.Type)
	}
}
