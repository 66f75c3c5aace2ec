// Package builder drives the external compiler over discovered targets and
// places each produced executable according to the flagship/tools rule.
package builder

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/joik2ww/forge/internal/config"
	"github.com/joik2ww/forge/internal/discover"
)

// Result is the outcome of one target's build attempt
type Result struct {
	Target     discover.Target
	Succeeded  bool
	OutputPath string
	// ArtifactSize is the final executable's size in bytes, when it succeeded
	ArtifactSize int64
	Err          error
}

// Summary aggregates one run's outcomes
type Summary struct {
	Found   int
	Built   int
	Results []Result
}

// Progress receives per-target events as the run proceeds
type Progress interface {
	TargetStarted(t discover.Target)
	TargetFinished(r Result)
}

// Orchestrator runs the per-target build loop
type Orchestrator struct {
	Layout   config.Layout
	Compiler Compiler
	Progress Progress
}

// ExecutableExt is the platform's executable file extension
func ExecutableExt() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

// Destination returns the final output path for a target: flagship scripts
// land beside the base directory, everything else in the tools directory,
// regardless of which scan root the target came from.
func (o *Orchestrator) Destination(t discover.Target) string {
	dir := o.Layout.ToolsDir
	if t.IsPrimary {
		dir = o.Layout.BaseDir
	}
	return filepath.Join(dir, t.BaseName+ExecutableExt())
}

// Run builds every target sequentially, in discovery order. Per-target
// failures are recorded and never abort the loop.
func (o *Orchestrator) Run(ctx context.Context, targets []discover.Target) Summary {
	sum := Summary{Found: len(targets)}
	for _, t := range targets {
		if o.Progress != nil {
			o.Progress.TargetStarted(t)
		}
		res := o.buildOne(ctx, t)
		if res.Succeeded {
			sum.Built++
		}
		sum.Results = append(sum.Results, res)
		if o.Progress != nil {
			o.Progress.TargetFinished(res)
		}
	}
	return sum
}

// buildOne compiles a single target and routes the artifact into place.
// Success is decided solely by the artifact appearing in the dist directory;
// the subprocess's own exit status is advisory.
func (o *Orchestrator) buildOne(ctx context.Context, t discover.Target) Result {
	res := Result{Target: t}

	dest := o.Destination(t)
	// Latest build wins; clear any previous executable before compiling.
	os.Remove(dest)

	manifest, err := LoadManifest(t.SourcePath)
	if err != nil {
		res.Err = err
		return res
	}

	req := Request{
		SourcePath: t.SourcePath,
		WorkDir:    filepath.Join(o.Layout.ScratchDir, t.BaseName),
		SpecDir:    o.Layout.ScratchDir,
		DistDir:    o.Layout.DistDir,
		Manifest:   manifest,
	}

	compileErr := inDir(filepath.Dir(t.SourcePath), func() error {
		return o.Compiler.Compile(ctx, req)
	})

	artifact := filepath.Join(o.Layout.DistDir, t.BaseName+ExecutableExt())
	info, statErr := os.Stat(artifact)
	if statErr != nil || info.Size() == 0 {
		if compileErr != nil {
			res.Err = compileErr
		} else {
			res.Err = fmt.Errorf("compiler produced no output for %s", t.BaseName)
		}
		return res
	}

	if err := moveFile(artifact, dest); err != nil {
		res.Err = fmt.Errorf("placing %s: %w", t.BaseName, err)
		return res
	}

	res.Succeeded = true
	res.OutputPath = dest
	res.ArtifactSize = info.Size()
	return res
}

// moveFile renames src to dst, overwriting dst, with a copy fallback for
// cross-device moves.
func moveFile(src, dst string) error {
	os.Remove(dst)
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
