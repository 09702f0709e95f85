// Package history persists per-run outcome records so operators can review
// recent relocation passes. Retention is capped at the most recent 50 runs.
package history
