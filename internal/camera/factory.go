package camera

import (
	"fmt"

	"kiosk-go/internal/config"
	"kiosk-go/internal/kiosk"
)

// NewCameraFromConfig opens the camera selected by the camera config type.
// Frames are delivered at the clip geometry of format.
func NewCameraFromConfig(cfg config.CameraConfig, ffmpegPath string, format kiosk.ClipFormat) (kiosk.Camera, error) {
	switch cfg.Type {
	case "ffmpeg", "":
		if cfg.Device == "" {
			return nil, fmt.Errorf("ffmpeg camera requires device to be set")
		}
		return OpenFFmpeg(ffmpegPath, cfg.InputFormat, cfg.Device, format.Width, format.Height)
	case "test":
		return NewStaticCamera(format.Width, format.Height), nil
	default:
		return nil, fmt.Errorf("unknown camera type: %s", cfg.Type)
	}
}
