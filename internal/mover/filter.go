package mover

import (
	"strings"

	"tiermover/internal/fileutil"
)

// BulkPath mirrors a cache-tier path onto the bulk tier by swapping the
// cache root prefix for the bulk root.
func BulkPath(localPath, cacheRoot, bulkRoot string) string {
	return bulkRoot + strings.TrimPrefix(localPath, cacheRoot)
}

// OnCacheTier reports whether localPath sits under the cache root.
func OnCacheTier(localPath, cacheRoot string) bool {
	return strings.HasPrefix(localPath, cacheRoot+"/")
}

// NeedsMove is the eligibility pre-filter applied to every fetched item
// before the planner runs. An item qualifies when its translated local path
// exists, sits on the cache tier, and its bulk-tier mirror does not already
// exist. The returned reason names the first failed check for skip logging.
func NeedsMove(localPath, cacheRoot, bulkRoot string) (bool, string) {
	if !fileutil.IsRegularFile(localPath) {
		return false, "not present on local filesystem"
	}
	if !OnCacheTier(localPath, cacheRoot) {
		return false, "not on cache tier"
	}
	if fileutil.IsRegularFile(BulkPath(localPath, cacheRoot, bulkRoot)) {
		return false, "already on bulk tier"
	}
	return true, ""
}
