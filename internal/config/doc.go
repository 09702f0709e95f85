// Package config loads, normalizes, and validates tiermover's TOML
// configuration. Load applies defaults first, then file values, then
// normalization (path expansion, prefix trimming, env fallbacks), then
// validation. Validation failures are fatal before any run starts.
package config
