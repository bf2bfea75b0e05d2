package ingest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func TestScanSourceDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "bob.txt", "Bob's resume")
	writeFile(t, dir, "alice.md", "# Alice")
	writeFile(t, dir, "notes.pdf", "binary")
	writeFile(t, dir, ".hidden.txt", "hidden but valid extension")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "subdir"), "nested.txt", "skipped")

	files, err := ScanSourceDir(dir)
	if err != nil {
		t.Fatalf("ScanSourceDir() error = %v", err)
	}

	want := []string{".hidden.txt", "alice.md", "bob.txt"}
	if len(files) != len(want) {
		t.Fatalf("ScanSourceDir() returned %d files, want %d", len(files), len(want))
	}
	for i, name := range want {
		if files[i].Filename != name {
			t.Errorf("files[%d].Filename = %q, want %q", i, files[i].Filename, name)
		}
		if !filepath.IsAbs(files[i].AbsPath) {
			t.Errorf("files[%d].AbsPath = %q, want absolute path", i, files[i].AbsPath)
		}
	}
}

func TestScanSourceDir_Empty(t *testing.T) {
	files, err := ScanSourceDir(t.TempDir())
	if err != nil {
		t.Fatalf("ScanSourceDir() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("ScanSourceDir() on empty dir returned %d files, want 0", len(files))
	}
}

func TestScanSourceDir_MissingDir(t *testing.T) {
	_, err := ScanSourceDir(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("ScanSourceDir() with missing directory should return error")
	}
}

func TestScanSourceDir_CaseInsensitiveExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "UPPER.TXT", "resume")
	writeFile(t, dir, "Mixed.Md", "# resume")

	files, err := ScanSourceDir(dir)
	if err != nil {
		t.Fatalf("ScanSourceDir() error = %v", err)
	}
	if len(files) != 2 {
		t.Errorf("ScanSourceDir() returned %d files, want 2", len(files))
	}
}
