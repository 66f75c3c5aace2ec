// Package discover enumerates the source scripts a run will compile.
package discover

import (
	"os"
	"path/filepath"
	"strings"
)

// SourceExt is the recognized script extension
const SourceExt = ".py"

// Target is one discovered source script queued for compilation
type Target struct {
	// SourcePath is the absolute path to the script
	SourcePath string
	// BaseName is the file name without extension
	BaseName string
	// IsPrimary marks the flagship script, routed to the base directory
	IsPrimary bool
}

// Options configures a scan
type Options struct {
	// BaseDir and ToolsDir are the two scan roots, in that order
	BaseDir  string
	ToolsDir string
	// Flagship is the base name that marks a target as primary (case-insensitive)
	Flagship string
	// Exclude is a file name skipped in the base directory (case-insensitive),
	// the orchestrator's own legacy launcher
	Exclude string
}

// Scan enumerates source scripts in the base directory and the tools
// subdirectory, non-recursively, in directory-listing order. The launcher
// script is excluded from the base directory scan.
func Scan(opts Options) ([]Target, error) {
	var targets []Target

	baseTargets, err := scanDir(opts.BaseDir, opts.Flagship, opts.Exclude)
	if err != nil {
		return nil, err
	}
	targets = append(targets, baseTargets...)

	toolTargets, err := scanDir(opts.ToolsDir, opts.Flagship, "")
	if err != nil {
		return nil, err
	}
	targets = append(targets, toolTargets...)

	return targets, nil
}

func scanDir(dir, flagship, exclude string) ([]Target, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var targets []Target
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.EqualFold(filepath.Ext(name), SourceExt) {
			continue
		}
		if exclude != "" && strings.EqualFold(name, exclude) {
			continue
		}

		abs, err := filepath.Abs(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		base := strings.TrimSuffix(name, filepath.Ext(name))
		targets = append(targets, Target{
			SourcePath: abs,
			BaseName:   base,
			IsPrimary:  strings.EqualFold(base, flagship),
		})
	}
	return targets, nil
}
