package discover

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScript(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte("print('hi')\n"), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestScan_BothRoots(t *testing.T) {
	base := t.TempDir()
	tools := filepath.Join(base, "scripts")

	writeScript(t, base, "FileOrganizer4.0k.py")
	writeScript(t, tools, "sorttofolders.py")
	writeScript(t, tools, "doubleterminator.py")

	targets, err := Scan(Options{
		BaseDir:  base,
		ToolsDir: tools,
		Flagship: "FileOrganizer4.0k",
		Exclude:  "compile_all.py",
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(targets) != 3 {
		t.Fatalf("len(targets) = %d, want 3", len(targets))
	}

	// Base dir first, then tools dir, each in listing order
	if targets[0].BaseName != "FileOrganizer4.0k" || !targets[0].IsPrimary {
		t.Errorf("targets[0] = %+v, want primary FileOrganizer4.0k", targets[0])
	}
	if targets[1].BaseName != "doubleterminator" || targets[1].IsPrimary {
		t.Errorf("targets[1] = %+v, want non-primary doubleterminator", targets[1])
	}
	if targets[2].BaseName != "sorttofolders" {
		t.Errorf("targets[2] = %+v, want sorttofolders", targets[2])
	}
}

func TestScan_ExcludesLauncher(t *testing.T) {
	base := t.TempDir()
	writeScript(t, base, "COMPILE_ALL.py") // exclusion is case-insensitive
	writeScript(t, base, "helper.py")

	targets, err := Scan(Options{
		BaseDir:  base,
		ToolsDir: filepath.Join(base, "scripts"),
		Flagship: "FileOrganizer4.0k",
		Exclude:  "compile_all.py",
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(targets) != 1 {
		t.Fatalf("len(targets) = %d, want 1", len(targets))
	}
	if targets[0].BaseName != "helper" {
		t.Errorf("targets[0].BaseName = %q, want helper", targets[0].BaseName)
	}
}

func TestScan_FlagshipCaseInsensitive(t *testing.T) {
	base := t.TempDir()
	writeScript(t, base, "fileorganizer4.0k.py")

	targets, err := Scan(Options{
		BaseDir:  base,
		ToolsDir: filepath.Join(base, "scripts"),
		Flagship: "FileOrganizer4.0k",
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(targets) != 1 || !targets[0].IsPrimary {
		t.Errorf("targets = %+v, want one primary target", targets)
	}
}

func TestScan_FlagshipInToolsDirStillPrimary(t *testing.T) {
	base := t.TempDir()
	tools := filepath.Join(base, "scripts")
	writeScript(t, tools, "FileOrganizer4.0k.py")

	targets, err := Scan(Options{
		BaseDir:  base,
		ToolsDir: tools,
		Flagship: "FileOrganizer4.0k",
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(targets) != 1 || !targets[0].IsPrimary {
		t.Errorf("targets = %+v, want primary regardless of scan root", targets)
	}
}

func TestScan_NonRecursiveAndNonPy(t *testing.T) {
	base := t.TempDir()
	writeScript(t, base, "top.py")
	writeScript(t, filepath.Join(base, "nested"), "deep.py")
	if err := os.WriteFile(filepath.Join(base, "readme.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	targets, err := Scan(Options{
		BaseDir:  base,
		ToolsDir: filepath.Join(base, "scripts"),
		Flagship: "FileOrganizer4.0k",
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(targets) != 1 || targets[0].BaseName != "top" {
		t.Errorf("targets = %+v, want only top-level top.py", targets)
	}
}

func TestScan_EmptyRoots(t *testing.T) {
	base := t.TempDir()
	targets, err := Scan(Options{
		BaseDir:  base,
		ToolsDir: filepath.Join(base, "scripts"),
		Flagship: "FileOrganizer4.0k",
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("len(targets) = %d, want 0", len(targets))
	}
}
