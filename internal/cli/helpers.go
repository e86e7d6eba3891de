package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/spherecal"
	"github.com/aretw0/spherecal/internal/logging"
	"github.com/aretw0/spherecal/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to separate from Stdout flow UI).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(slog.LevelDebug)
	}
	return logging.NewNop()
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}

// createDebugHooks traces the wizard lifecycle when --debug is active.
func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageEnter: func(ctx context.Context, e *domain.StageEvent) {
			logger.Debug("Enter Stage", "stage", string(e.Stage))
		},
		OnStageLeave: func(ctx context.Context, e *domain.StageEvent) {
			logger.Debug("Leave Stage", "stage", string(e.Stage))
		},
		OnCommit: func(ctx context.Context, e *domain.CommitEvent) {
			if e.Err != nil {
				logger.Debug("Commit (Error)", "stage", string(e.Stage), "keys", e.Keys, "err", e.Err)
			} else {
				logger.Debug("Commit", "stage", string(e.Stage), "keys", e.Keys)
			}
		},
		OnFit: func(ctx context.Context, e *domain.FitEvent) {
			if e.Err != nil {
				logger.Debug("Fit (Error)", "fit", e.Fit, "points", e.Points, "err", e.Err)
			} else {
				logger.Debug("Fit", "fit", e.Fit, "points", e.Points, "elapsed", e.Duration)
			}
		},
	}
}

func isInterrupted(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, io.EOF) ||
		(errors.Unwrap(err) != nil && isInterrupted(errors.Unwrap(err)))
}

func handleExecutionError(err error) error {
	if err == nil {
		return nil
	}
	if isInterrupted(err) {
		return nil // Exit 0 for interruptions
	}
	return err
}

func logCompletion(res spherecal.Result, debug bool, sig os.Signal) {
	switch {
	case res.Succeeded():
		printSystemMessage("Calibration complete.")
	case res.Cancelled():
		printSystemMessage("Cancelled during '%s'. Artifacts committed so far were kept.", res.Outcome)
	case isInterrupted(res.Err):
		// Aesthetic: Print [CTRL+C] simulation if likely from user via SIGINT
		if sig == os.Interrupt {
			if debug {
				// Debug mode: Logs likely interrupted the prompt line. Restore context.
				fmt.Printf("> [CTRL+C]\n")
			} else {
				fmt.Printf("[CTRL+C]\n")
			}
			printSystemMessage("Interrupted during '%s'. Artifacts committed so far were kept.", res.Outcome)
		} else if sig != nil {
			fmt.Printf("\n")
			printSystemMessage("Terminated during '%s'.", res.Outcome)
		} else {
			printSystemMessage("Interrupted during '%s'.", res.Outcome)
		}
	default:
		printSystemMessage("Calibration failed during '%s': %v", res.Outcome, res.Err)
	}
}
