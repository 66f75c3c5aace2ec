package history

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/joik2ww/forge/internal/builder"
	"github.com/joik2ww/forge/internal/discover"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNew_UnusablePathReturnsError(t *testing.T) {
	// A directory cannot be opened as a database file; the open must fail
	// cleanly instead of handing back a broken store.
	if store, err := New(t.TempDir()); err == nil {
		store.Close()
		t.Fatal("New() on a directory path succeeded, want error")
	}
}

func TestRunLifecycle(t *testing.T) {
	store := newTestStore(t)

	id := NewRunID()
	start := time.Now().UTC().Truncate(time.Second)
	if err := store.BeginRun(id, start); err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if err := store.FinishRun(id, 3, 2, start.Add(time.Minute)); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("len(runs) = %d, want 1", len(runs))
	}
	r := runs[0]
	if r.ID != id || r.Found != 3 || r.Built != 2 || r.Status != "completed" {
		t.Errorf("run = %+v, want id=%s found=3 built=2 completed", r, id)
	}
	if r.FinishedAt == nil {
		t.Error("FinishedAt is nil after FinishRun")
	}
}

func TestRecordBuild(t *testing.T) {
	store := newTestStore(t)
	id := NewRunID()
	if err := store.BeginRun(id, time.Now()); err != nil {
		t.Fatal(err)
	}

	ok := builder.Result{
		Target:       discover.Target{BaseName: "helper", SourcePath: "/src/helper.py"},
		Succeeded:    true,
		OutputPath:   "/out/helper",
		ArtifactSize: 1024,
	}
	bad := builder.Result{
		Target: discover.Target{BaseName: "bad", SourcePath: "/src/bad.py"},
		Err:    fmt.Errorf("compiler produced no output for bad"),
	}
	for _, res := range []builder.Result{ok, bad} {
		if err := store.RecordBuild(id, res); err != nil {
			t.Fatalf("RecordBuild() error = %v", err)
		}
	}

	builds, err := store.ListBuilds(id)
	if err != nil {
		t.Fatalf("ListBuilds() error = %v", err)
	}
	if len(builds) != 2 {
		t.Fatalf("len(builds) = %d, want 2", len(builds))
	}
	if !builds[0].Succeeded || builds[0].OutputPath != "/out/helper" || builds[0].ArtifactSize != 1024 {
		t.Errorf("builds[0] = %+v", builds[0])
	}
	if builds[1].Succeeded || builds[1].Error == "" {
		t.Errorf("builds[1] = %+v, want recorded failure", builds[1])
	}
}

func TestListRuns_Ordering(t *testing.T) {
	store := newTestStore(t)

	older := NewRunID()
	newer := NewRunID()
	base := time.Now().UTC()
	if err := store.BeginRun(older, base.Add(-time.Hour)); err != nil {
		t.Fatal(err)
	}
	if err := store.BeginRun(newer, base); err != nil {
		t.Fatal(err)
	}

	runs, err := store.ListRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].ID != newer {
		t.Errorf("runs[0].ID = %s, want newest first", runs[0].ID)
	}

	limited, err := store.ListRuns(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("len(limited) = %d, want 1", len(limited))
	}
}
