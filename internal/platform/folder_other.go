//go:build !linux && !darwin && !windows

package platform

import (
	"errors"
	"path/filepath"
)

func openFolder(string) error {
	return errors.New("open folder: unsupported platform")
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
