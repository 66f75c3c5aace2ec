package builder

import (
	"context"
	"fmt"
	"strings"

	"github.com/joik2ww/forge/internal/toolchain"
)

// Request describes one compiler invocation
type Request struct {
	// SourcePath is the script to compile
	SourcePath string
	// WorkDir receives this target's build intermediates, isolated per target
	WorkDir string
	// SpecDir receives the build-descriptor file
	SpecDir string
	// DistDir is where the finished executable is deposited
	DistDir string
	// Manifest carries optional per-script build options
	Manifest Manifest
}

// Compiler turns one source file into one self-contained executable.
// The orchestration loop is tested against a fake implementation.
type Compiler interface {
	Compile(ctx context.Context, req Request) error
}

// PyInstaller invokes the packager module through the probed toolchain.
// The command-line contract mirrors the original build script and must not
// change: one-file mode, console attached unless the manifest says windowed,
// dist/work/spec paths passed explicitly.
type PyInstaller struct {
	tc *toolchain.Toolchain
}

// NewPyInstaller creates a Compiler backed by the given toolchain
func NewPyInstaller(tc *toolchain.Toolchain) *PyInstaller {
	return &PyInstaller{tc: tc}
}

// Compile runs the packager as a blocking subprocess. The caller is expected
// to have switched the working directory to the script's own directory so
// relative-path resources resolve the way they would for the script itself.
func (p *PyInstaller) Compile(ctx context.Context, req Request) error {
	args := p.buildArgs(req)
	out, err := p.tc.Runner().Run(ctx, p.tc.Interpreter, args...)
	if err != nil {
		return fmt.Errorf("%s -m %s: %w: %s",
			p.tc.Interpreter, p.tc.CompilerModule, err, lastLine(out))
	}
	return nil
}

func (p *PyInstaller) buildArgs(req Request) []string {
	mode := "--console"
	if req.Manifest.Windowed {
		mode = "--windowed"
	}
	args := []string{
		"-m", p.tc.CompilerModule,
		"--onefile",
		mode,
		"--distpath", req.DistDir,
		"--workpath", req.WorkDir,
		"--specpath", req.SpecDir,
	}
	for _, imp := range req.Manifest.HiddenImports {
		args = append(args, "--hidden-import", imp)
	}
	if req.Manifest.Icon != "" {
		args = append(args, "--icon", req.Manifest.Icon)
	}
	args = append(args, req.Manifest.Args...)
	args = append(args, req.SourcePath)
	return args
}

func lastLine(out []byte) string {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
