// Package logging builds slog loggers with console and JSON handlers plus
// shared attribute helpers used across the mover.
package logging
