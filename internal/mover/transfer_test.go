package mover

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestMoveFileLive(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "cache", "a.mkv")
	dst := filepath.Join(dir, "bulk", "nested", "a.mkv")
	writeFile(t, src, "payload")

	tr := NewTransferrer(false, nil)
	if got := tr.MoveFile(src, dst); got != ResultMoved {
		t.Fatalf("MoveFile = %v, want moved", got)
	}

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("source should be removed after verified copy")
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if string(data) != "payload" {
		t.Fatalf("dest content mismatch: %q", data)
	}
}

func TestMoveFileSkipsExistingDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "dst.mkv")
	writeFile(t, src, "new")
	writeFile(t, dst, "old")

	tr := NewTransferrer(false, nil)
	if got := tr.MoveFile(src, dst); got != ResultSkipped {
		t.Fatalf("MoveFile = %v, want skipped", got)
	}

	if _, err := os.Stat(src); err != nil {
		t.Fatal("source must be untouched on skip")
	}
	data, _ := os.ReadFile(dst)
	if string(data) != "old" {
		t.Fatal("existing destination must never be overwritten")
	}
}

func TestMoveFileDryRunMutatesNothing(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	dst := filepath.Join(dir, "bulk", "dst.mkv")
	writeFile(t, src, "payload")

	tr := NewTransferrer(true, nil)
	if got := tr.MoveFile(src, dst); got != ResultMoved {
		t.Fatalf("MoveFile = %v, want moved (simulated)", got)
	}

	if _, err := os.Stat(src); err != nil {
		t.Fatal("dry-run must not remove source")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Fatal("dry-run must not create destination")
	}
	if _, err := os.Stat(filepath.Join(dir, "bulk")); !os.IsNotExist(err) {
		t.Fatal("dry-run must not create destination directories")
	}
}

func TestMoveFileMissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	tr := NewTransferrer(false, nil)
	if got := tr.MoveFile(filepath.Join(dir, "nope.mkv"), filepath.Join(dir, "dst.mkv")); got != ResultFailed {
		t.Fatalf("MoveFile = %v, want failed", got)
	}
}

func TestMoveFileFailureRetainsSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.mkv")
	writeFile(t, src, "payload")

	// Destination parent is a file, so MkdirAll fails.
	blocker := filepath.Join(dir, "blocked")
	writeFile(t, blocker, "")
	dst := filepath.Join(blocker, "dst.mkv")

	tr := NewTransferrer(false, nil)
	if got := tr.MoveFile(src, dst); got != ResultFailed {
		t.Fatalf("MoveFile = %v, want failed", got)
	}
	if _, err := os.Stat(src); err != nil {
		t.Fatal("failed transfer must never delete the source")
	}
}
