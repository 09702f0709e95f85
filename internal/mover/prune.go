package mover

import (
	"os"
	"path/filepath"

	"tiermover/internal/fileutil"
	"tiermover/internal/logging"
)

// PruneEmptyUpward removes empty directories starting at startDir and walking
// toward boundaryDir. It never removes boundaryDir itself, the filesystem
// root, or any directory that still has entries, so it only ever deletes
// directories a transfer just emptied. In live mode a removal failure stops
// the walk immediately (non-empty due to a race, or permission denied).
func (t *Transferrer) PruneEmptyUpward(startDir, boundaryDir string) {
	current := filepath.Clean(startDir)
	boundary := filepath.Clean(boundaryDir)

	for current != boundary && current != "/" && current != "." {
		info, err := os.Stat(current)
		if err != nil || !info.IsDir() {
			return
		}
		empty, err := fileutil.IsEmptyDir(current)
		if err != nil || !empty {
			return
		}

		if t.dryRun {
			t.logger.Info("would remove empty directory", logging.String("dir", current))
		} else {
			if err := os.Remove(current); err != nil {
				t.logger.Warn("stopping prune, directory removal failed",
					logging.String("dir", current),
					logging.Error(err),
				)
				return
			}
			t.logger.Info("removed empty directory", logging.String("dir", current))
		}

		parent := filepath.Dir(current)
		if parent == current {
			return
		}
		current = parent
	}
}
