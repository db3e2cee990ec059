package timesource

import (
	"fmt"

	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
)

// NewTimeAuthorityFromConfig returns the configured authority, or nil when the
// clock check is disabled.
func NewTimeAuthorityFromConfig(cfg config.TimeConfig) (kiosk.TimeAuthority, error) {
	switch cfg.Type {
	case "ntp", "":
		if cfg.Server == "" {
			return nil, fmt.Errorf("ntp time source requires server to be set")
		}
		return NewNTPAuthority(cfg.Server, cfg.Timeout.Duration), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown time source type: %s", cfg.Type)
	}
}
