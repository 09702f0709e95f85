// Package jellyfin implements the playback-source query contract: a
// connectivity ping, per-user account resolution, and the played-items fetch
// that feeds the relocation pass.
package jellyfin
