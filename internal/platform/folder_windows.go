//go:build windows

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
)

func openFolder(path string) error {
	// explorer exits with status 1 even when the window opened.
	if err := exec.Command("explorer", filepath.Clean(path)).Start(); err != nil {
		return fmt.Errorf("open folder: explorer failed: %w", err)
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "AppData", "Roaming")
}
