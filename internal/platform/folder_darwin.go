//go:build darwin

package platform

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

func openFolder(path string) error {
	output, err := exec.Command("open", path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("open folder: open failed: %w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func fallbackConfigDir(homeDir string) string {
	return filepath.Join(homeDir, "Library", "Application Support")
}
