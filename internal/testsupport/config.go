// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"tiermover/internal/config"
)

// NewConfig returns a validated configuration rooted in t.TempDir(): cache,
// bulk, and log directories exist, the remote prefix maps into the cache
// tier, and credentials are well-formed placeholder hex values.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()
	root := t.TempDir()

	cfg := config.Default()
	cfg.Jellyfin.URL = "http://127.0.0.1:8096"
	cfg.Jellyfin.APIKey = "0123456789abcdef0123456789abcdef"
	cfg.Jellyfin.UserIDs = []string{"fedcba98765432100123456789abcdef"}
	cfg.Tiers.CacheRoot = filepath.Join(root, "cache")
	cfg.Tiers.BulkRoot = filepath.Join(root, "bulk")
	cfg.Paths.RemotePrefix = "/media/media"
	cfg.Paths.LocalPrefix = filepath.Join(cfg.Tiers.CacheRoot, "media")
	cfg.Paths.LogDir = filepath.Join(root, "logs")
	cfg.Mover.MoverPIDFile = filepath.Join(root, "mover.pid")

	for _, dir := range []string{cfg.Tiers.CacheRoot, cfg.Tiers.BulkRoot, cfg.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("create fixture dir %s: %v", dir, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("fixture config invalid: %v", err)
	}
	return &cfg
}

// WriteMediaFile creates a file with content under path, creating parent
// directories as needed, and returns the path.
func WriteMediaFile(t testing.TB, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create media dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write media file: %v", err)
	}
	return path
}
