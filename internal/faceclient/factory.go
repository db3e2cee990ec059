package faceclient

import (
	"fmt"

	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
)

// NewFaceEngineFromConfig creates the face engine selected by cfg.Type.
func NewFaceEngineFromConfig(cfg config.FaceConfig) (kiosk.FaceEngine, error) {
	switch cfg.Type {
	case "http", "":
		if cfg.ServiceURL == "" {
			return nil, fmt.Errorf("http face engine requires service_url to be set")
		}
		return NewHTTPEngine(New(cfg.ServiceURL, cfg.Timeout.Duration), cfg.Tolerance), nil
	case "thumbnail":
		return NewThumbnailEngine(cfg.Tolerance), nil
	default:
		return nil, fmt.Errorf("unknown face engine type: %s", cfg.Type)
	}
}
