package app

import (
	"fmt"
	"os"
	"path/filepath"
)

// GetDefaults returns application default paths, checking environment variables first.
// Environment variables:
//   - KIOSK_CONFIG_PATH: config file location (default: ~/.config/kiosk.toml)
//   - KIOSK_HOME: base directory for kiosk data (default: ~/.local/share/kiosk)
func GetDefaults() (map[string]string, error) {
	configPath, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	baseDir, err := getBaseDir()
	if err != nil {
		return nil, err
	}

	return map[string]string{
		"config_path": configPath,
		"base_dir":    baseDir,
		"db_dir":      filepath.Join(baseDir, "db"),
		"log_dir":     filepath.Join(baseDir, "log"),
	}, nil
}

// getConfigPath returns the config file path, checking KIOSK_CONFIG_PATH env var first,
// then falling back to the default ~/.config/kiosk.toml.
func getConfigPath() (string, error) {
	if path := os.Getenv("KIOSK_CONFIG_PATH"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "kiosk.toml"), nil
}

// getBaseDir returns the base directory for kiosk data, checking KIOSK_HOME env var first,
// then falling back to the XDG default ~/.local/share/kiosk.
func getBaseDir() (string, error) {
	if path := os.Getenv("KIOSK_HOME"); path != "" {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "kiosk"), nil
}
