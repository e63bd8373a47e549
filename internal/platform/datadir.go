package platform

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the data directory when set.
const HomeEnv = "EZLOCKIN_HOME"

// DataDir returns the directory holding config, logs and stats for appName.
// It is not created.
func DataDir(appName string) (string, error) {
	if override := os.Getenv(HomeEnv); override != "" {
		return filepath.Clean(override), nil
	}

	configDir, err := os.UserConfigDir()
	if err == nil && configDir != "" {
		return filepath.Join(configDir, appName), nil
	}

	homeDir, homeErr := os.UserHomeDir()
	if homeErr != nil {
		if err != nil {
			return "", fmt.Errorf("resolve data dir: %w", err)
		}
		return "", fmt.Errorf("resolve data dir: %w", homeErr)
	}

	return filepath.Join(fallbackConfigDir(homeDir), appName), nil
}

// EnsureDataDir resolves and creates the data directory.
func EnsureDataDir(appName string) (string, error) {
	dir, err := DataDir(appName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir %s: %w", dir, err)
	}
	return dir, nil
}

// OpenFolder reveals path in the system file manager.
func OpenFolder(path string) error {
	if path == "" {
		return fmt.Errorf("open folder: path is empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("open folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("open folder: %s is not a directory", path)
	}
	return openFolder(path)
}
