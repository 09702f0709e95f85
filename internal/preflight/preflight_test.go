package preflight

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := CheckDirectoryAccess("Cache tier root", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir: %+v", result)
	}

	result = CheckDirectoryAccess("Cache tier root", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Fatal("expected failure for missing directory")
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result = CheckDirectoryAccess("Cache tier root", file)
	if result.Passed {
		t.Fatal("expected failure for non-directory")
	}
}

func TestCheckJellyfin(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"ServerName": "test", "Version": "10.9"})
	}))
	defer srv.Close()

	result := CheckJellyfin(context.Background(), srv.URL, "abc")
	if !result.Passed {
		t.Fatalf("expected pass: %+v", result)
	}

	result = CheckJellyfin(context.Background(), srv.URL, "")
	if result.Passed {
		t.Fatal("expected failure without api key")
	}

	result = CheckJellyfin(context.Background(), "http://127.0.0.1:1", "abc")
	if result.Passed {
		t.Fatal("expected failure against closed port")
	}
}

func TestMoverBusyPidFile(t *testing.T) {
	dir := t.TempDir()
	pidFile := filepath.Join(dir, "mover.pid")

	// Missing pid file: not busy.
	if MoverBusy(pidFile) {
		t.Fatal("missing pid file must report not busy")
	}

	// Live pid (our own): busy.
	if err := os.WriteFile(pidFile, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		t.Fatal(err)
	}
	if !MoverBusy(pidFile) {
		t.Fatal("live pid must report busy")
	}

	// Garbage content: not busy.
	if err := os.WriteFile(pidFile, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatal(err)
	}
	if MoverBusy(pidFile) {
		t.Fatal("garbage pid file must report not busy")
	}
}

func TestAllPassed(t *testing.T) {
	if !AllPassed([]Result{{Passed: true}, {Passed: true}}) {
		t.Fatal("expected all passed")
	}
	if AllPassed([]Result{{Passed: true}, {Passed: false}}) {
		t.Fatal("expected failure to propagate")
	}
}
