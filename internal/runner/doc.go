// Package runner drives a single relocation pass as a fixed linear stage
// sequence: dependency check, source and account validation, path validation,
// busy check, threshold check, fetch, filter, relocate, summarize. All
// environment validation happens before the first file is touched.
package runner
