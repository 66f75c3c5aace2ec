// Package workspace manages the transient directories a build run writes to.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joik2ww/forge/internal/config"
)

// Workspace owns the scratch, dist, and tools directories of one run
type Workspace struct {
	layout config.Layout
}

// New creates a Workspace for the given layout
func New(layout config.Layout) *Workspace {
	return &Workspace{layout: layout}
}

// Ensure creates the scratch, dist, and tools directories if missing
func (w *Workspace) Ensure() error {
	for _, dir := range []string{w.layout.ScratchDir, w.layout.DistDir, w.layout.ToolsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	return nil
}

// Clean resets the workspace: scratch subdirectories, dist files, and stale
// .spec descriptor files in the base directory are removed. Every deletion is
// best-effort; a locked or unremovable entry never fails the run. Called both
// before and after a run so stale intermediates cannot leak across runs.
func (w *Workspace) Clean() {
	w.removeScratchSubdirs()
	w.removeDistFiles()
	w.removeSpecFiles()
}

func (w *Workspace) removeScratchSubdirs() {
	entries, err := os.ReadDir(w.layout.ScratchDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			os.RemoveAll(filepath.Join(w.layout.ScratchDir, entry.Name()))
		}
	}
}

func (w *Workspace) removeDistFiles() {
	entries, err := os.ReadDir(w.layout.DistDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			os.Remove(filepath.Join(w.layout.DistDir, entry.Name()))
		}
	}
}

func (w *Workspace) removeSpecFiles() {
	entries, err := os.ReadDir(w.layout.BaseDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".spec") {
			os.Remove(filepath.Join(w.layout.BaseDir, entry.Name()))
		}
	}
}
