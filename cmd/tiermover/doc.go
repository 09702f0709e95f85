// Package main hosts the tiermover CLI entrypoint and command graph.
//
// The Cobra-based command tree wires the relocation runner, environment
// status checks, run history, and configuration scaffolding. It centralizes
// configuration resolution, the single-run lock, and logging setup so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
