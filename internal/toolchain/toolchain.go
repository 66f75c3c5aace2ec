// Package toolchain probes the external interpreter and compiler the
// orchestrator depends on, installing the compiler when it is missing.
package toolchain

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/joik2ww/forge/internal/config"
)

// Runner executes an external command and returns its combined output.
// The build orchestration is tested against a fake implementation.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands via os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// Toolchain wraps the external Python interpreter and packager module
type Toolchain struct {
	Interpreter    string
	CompilerModule string

	fallbacks []string
	runner    Runner
}

// New creates a Toolchain from config, executing real commands
func New(cfg config.ToolchainConfig) *Toolchain {
	return NewWithRunner(cfg, ExecRunner{})
}

// NewWithRunner creates a Toolchain with a custom command runner
func NewWithRunner(cfg config.ToolchainConfig, runner Runner) *Toolchain {
	return &Toolchain{
		Interpreter:    cfg.Interpreter,
		CompilerModule: cfg.CompilerModule,
		fallbacks:      cfg.InterpreterFallbacks,
		runner:         runner,
	}
}

// Probe verifies the interpreter and compiler are callable. A missing
// compiler triggers one install attempt through pip. Any remaining failure
// is fatal to the run.
func (t *Toolchain) Probe(ctx context.Context) error {
	if err := t.probeInterpreter(ctx); err != nil {
		return err
	}
	return t.probeCompiler(ctx)
}

// probeInterpreter finds the first callable interpreter among the configured
// name and its fallbacks, and pins it for the rest of the run.
func (t *Toolchain) probeInterpreter(ctx context.Context) error {
	candidates := append([]string{t.Interpreter}, t.fallbacks...)
	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if _, err := t.runner.Run(ctx, candidate, "--version"); err == nil {
			t.Interpreter = candidate
			return nil
		}
	}
	return fmt.Errorf("no working interpreter found (tried %s)", strings.Join(candidates, ", "))
}

// probeCompiler checks the packager module, attempting a pip install if the
// first probe fails.
func (t *Toolchain) probeCompiler(ctx context.Context) error {
	if _, err := t.runner.Run(ctx, t.Interpreter, "-m", t.CompilerModule, "--version"); err == nil {
		return nil
	}

	if out, err := t.runner.Run(ctx, t.Interpreter, "-m", "pip", "install", t.CompilerModule); err != nil {
		return fmt.Errorf("installing %s: %w: %s", t.CompilerModule, err, strings.TrimSpace(string(out)))
	}

	if _, err := t.runner.Run(ctx, t.Interpreter, "-m", t.CompilerModule, "--version"); err != nil {
		return fmt.Errorf("%s still not callable after install: %w", t.CompilerModule, err)
	}
	return nil
}

// Versions reports the interpreter and compiler version strings, for doctor
// output. Probe must have succeeded first.
func (t *Toolchain) Versions(ctx context.Context) (interpreter, compiler string, err error) {
	out, err := t.runner.Run(ctx, t.Interpreter, "--version")
	if err != nil {
		return "", "", fmt.Errorf("interpreter version: %w", err)
	}
	interpreter = strings.TrimSpace(string(out))

	out, err = t.runner.Run(ctx, t.Interpreter, "-m", t.CompilerModule, "--version")
	if err != nil {
		return interpreter, "", fmt.Errorf("compiler version: %w", err)
	}
	compiler = strings.TrimSpace(string(out))
	return interpreter, compiler, nil
}

// Runner returns the underlying command runner
func (t *Toolchain) Runner() Runner {
	return t.runner
}
