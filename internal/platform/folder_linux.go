//go:build linux

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

func openFolder(path string) error {
	opener, err := exec.LookPath("xdg-open")
	if err != nil {
		return fmt.Errorf("open folder: xdg-open not found: %w", err)
	}
	output, err := exec.Command(opener, path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("open folder: xdg-open failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config")
}
