package builder

import (
	"fmt"
	"os"
)

// inDir runs fn with the process working directory switched to dir, restoring
// the original directory on every exit path. The working directory is shared
// process state; builds run sequentially, so the only hazard is a leaked
// directory corrupting the next target's relative-path resolution.
func inDir(dir string, fn func() error) error {
	orig, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("reading working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("entering %s: %w", dir, err)
	}
	defer os.Chdir(orig)
	return fn()
}
