// Package report prints per-target progress and the end-of-run summary.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/joik2ww/forge/internal/builder"
	"github.com/joik2ww/forge/internal/config"
	"github.com/joik2ww/forge/internal/discover"
)

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
)

// Reporter writes progress lines as the build loop runs and a final tally
// afterwards. It implements builder.Progress and never aborts a run.
type Reporter struct {
	out io.Writer
}

// New creates a Reporter writing to out
func New(out io.Writer) *Reporter {
	return &Reporter{out: out}
}

// Header prints the run banner
func (r *Reporter) Header(version string) {
	fmt.Fprintln(r.out, headerStyle.Render(fmt.Sprintf("forge %s - building all scripts", version)))
}

// TargetStarted announces a target before its compiler invocation
func (r *Reporter) TargetStarted(t discover.Target) {
	label := t.BaseName
	if t.IsPrimary {
		label += " (flagship)"
	}
	fmt.Fprintf(r.out, "%s compiling %s...\n", infoStyle.Render("INFO:"), label)
}

// TargetFinished reports one target's outcome
func (r *Reporter) TargetFinished(res builder.Result) {
	if res.Succeeded {
		fmt.Fprintf(r.out, "%s %s -> %s (%s)\n",
			successStyle.Render("SUCCESS:"),
			res.Target.BaseName,
			res.OutputPath,
			humanize.Bytes(uint64(res.ArtifactSize)))
		return
	}
	fmt.Fprintf(r.out, "%s %s: %v\n",
		errorStyle.Render("ERROR:"), res.Target.BaseName, res.Err)
}

// Summary prints the final tally and both output locations
func (r *Reporter) Summary(sum builder.Summary, layout config.Layout) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "scripts found: %d, built: %d", sum.Found, sum.Built)
	if failed := sum.Found - sum.Built; failed > 0 {
		fmt.Fprintf(r.out, ", failed: %d", failed)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "flagship output: %s\n", layout.BaseDir)
	fmt.Fprintf(r.out, "tool output:     %s\n", layout.ToolsDir)
}

// NoScripts reports the user-facing empty-scan condition
func (r *Reporter) NoScripts(layout config.Layout) {
	fmt.Fprintf(r.out, "%s no scripts found in %s or %s\n",
		errorStyle.Render("ERROR:"), layout.BaseDir, layout.ToolsDir)
}
