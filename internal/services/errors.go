package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks malformed configuration values (API key, user IDs).
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing directories or required external tooling.
	ErrConfiguration = errors.New("configuration error")
	// ErrConnectivity marks an unreachable or failing playback source.
	ErrConnectivity = errors.New("connectivity error")
	// ErrTransient marks per-file failures that do not abort the batch.
	ErrTransient = errors.New("transient failure")
	// ErrNotFound marks lookups that resolved to nothing (user, item).
	ErrNotFound = errors.New("not found")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether an error should abort the whole run before any
// mutation. Transfer-level failures are isolated and never fatal.
func IsFatal(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrConnectivity)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
