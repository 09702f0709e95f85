// Package mover implements the relocation engine: the file transfer
// primitive with at-most-once semantics, the upward directory pruner, the
// eligibility pre-filter, and the per-item relocation planner that decides
// which file set moves for a movie, an episode, or an unclassified item.
package mover
