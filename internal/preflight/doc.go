// Package preflight validates the runtime environment before a relocation
// pass: tier directory access, playback-source connectivity, and whether the
// lower-level storage-pool mover is currently busy.
package preflight
