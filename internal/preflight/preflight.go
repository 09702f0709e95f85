package preflight

import (
	"context"

	"tiermover/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the environment checks for the given config: tier roots,
// log directory, and playback-source connectivity. User resolution is part
// of the runner's validation stage since it needs per-user reporting.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Cache tier root", cfg.Tiers.CacheRoot),
		CheckDirectoryAccess("Bulk tier root", cfg.Tiers.BulkRoot),
		CheckDirectoryAccess("Log directory", cfg.Paths.LogDir),
		CheckJellyfin(ctx, cfg.Jellyfin.URL, cfg.Jellyfin.APIKey),
	}
	return results
}

// AllPassed reports whether every result passed.
func AllPassed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}
