package report

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/joik2ww/forge/internal/builder"
	"github.com/joik2ww/forge/internal/config"
	"github.com/joik2ww/forge/internal/discover"
)

func TestTargetFinished_Success(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.TargetFinished(builder.Result{
		Target:       discover.Target{BaseName: "helper"},
		Succeeded:    true,
		OutputPath:   "/opt/organizer/scripts/helper",
		ArtifactSize: 2 * 1024 * 1024,
	})

	out := buf.String()
	if !strings.Contains(out, "helper") || !strings.Contains(out, "/opt/organizer/scripts/helper") {
		t.Errorf("output missing target details: %q", out)
	}
	if !strings.Contains(out, "MB") {
		t.Errorf("output missing humanized size: %q", out)
	}
}

func TestTargetFinished_Failure(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.TargetFinished(builder.Result{
		Target: discover.Target{BaseName: "bad"},
		Err:    fmt.Errorf("compiler produced no output for bad"),
	})

	out := buf.String()
	if !strings.Contains(out, "bad") || !strings.Contains(out, "no output") {
		t.Errorf("output missing failure details: %q", out)
	}
}

func TestSummary_Counts(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	layout := config.Layout{BaseDir: "/opt/organizer", ToolsDir: "/opt/organizer/scripts"}
	r.Summary(builder.Summary{Found: 3, Built: 2}, layout)

	out := buf.String()
	if !strings.Contains(out, "found: 3, built: 2") {
		t.Errorf("summary missing counts: %q", out)
	}
	if !strings.Contains(out, "failed: 1") {
		t.Errorf("summary missing failed count: %q", out)
	}
	if !strings.Contains(out, "/opt/organizer") || !strings.Contains(out, "/opt/organizer/scripts") {
		t.Errorf("summary missing output locations: %q", out)
	}
}

func TestSummary_AllBuilt(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf)

	r.Summary(builder.Summary{Found: 2, Built: 2}, config.Layout{})
	if strings.Contains(buf.String(), "failed") {
		t.Errorf("clean run should not mention failures: %q", buf.String())
	}
}
