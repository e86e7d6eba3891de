package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for session-terminating conditions.
var (
	// ErrCancelled is returned when the operator aborts the wizard. Artifacts
	// committed before the cancel remain valid.
	ErrCancelled = errors.New("session cancelled by user")

	// ErrWriteFailed wraps a config store flush failure. It is fatal: the
	// session moves to StageFailed and remaining stages are skipped.
	ErrWriteFailed = errors.New("config store write failed")

	// ErrNoFrame is returned when the frame source cannot supply the backdrop
	// frame the session needs at start-up.
	ErrNoFrame = errors.New("no frame available from source")
)

// ValidationError is a recoverable, stage-local failure: the stage is retried
// with the message surfaced to the operator and the store is never touched.
type ValidationError struct {
	Stage  Stage
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("stage %s: %s", e.Stage, e.Reason)
}

// Validation builds a ValidationError for the given stage.
func Validation(stage Stage, format string, args ...any) *ValidationError {
	return &ValidationError{Stage: stage, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
