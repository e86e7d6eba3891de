package ports

import (
	"context"
)

// ConfigStore defines the interface for the persisted calibration artifacts.
// It is a typed key/value document with staged-write-then-flush semantics:
// Add only stages a value in memory, Write flushes every staged value durably
// as one atomic batch. This enables the wizard's "Stop & Resume" behavior —
// each completed stage is committed before the next one starts.
type ConfigStore interface {
	// Load reads the persisted document into memory. A missing backing
	// document is a normal first run and returns nil. Read and parse failures
	// leave the store empty and return an error for diagnostics only; callers
	// treat both outcomes the same as data absence.
	Load(ctx context.Context) error

	// Get returns the in-memory value for key, staged values taking
	// precedence over loaded ones. The second result is false when the key is
	// absent. Values keep the shape the codec produced (scalars, []any,
	// nested []any); callers coerce them to typed forms.
	Get(key string) (any, bool)

	// Add stages a value for key. It never fails and never touches the backing
	// document.
	Add(key string, value any)

	// Write flushes the whole document, including every staged value, as one
	// atomic batch. On error nothing staged may be considered durable.
	Write(ctx context.Context) error
}
