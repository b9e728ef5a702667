// Package workspace derives and creates the date-keyed run workspace.
//
// Re-running with the same start date reuses the same directory and
// overwrites prior files. Callers needing immutable history must pass a
// distinguishing start date or archive before re-running.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vbtn/compliance-audit/internal/constants"
)

// Path returns the workspace directory for a collection starting at from,
// without touching the file system.
func Path(baseDir string, from time.Time) string {
	return filepath.Join(baseDir, constants.DailyFolder, constants.RunFolderPrefix+from.Format(time.DateOnly))
}

// Create derives the workspace directory for from and creates it along with
// all ancestors. It is idempotent: an existing directory is not an error.
func Create(baseDir string, from time.Time) (string, error) {
	dir := Path(baseDir, from)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create run workspace %s: %v", dir, err)
	}
	return dir, nil
}
