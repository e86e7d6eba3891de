package spherecal

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/spherecal/internal/fit"
	"github.com/aretw0/spherecal/internal/runtime"
	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/ports"
)

// Version is the library version, stamped by the release workflow.
var Version = "0.3.0"

// Frontend bundles the operator-facing ports for one session. All four
// fields are required.
type Frontend struct {
	Frames   ports.FrameSource
	Input    ports.InputSource
	Renderer ports.Renderer
	Prompter ports.Prompter
}

// Result is the outcome of one wizard session. Outcome is the terminal stage
// the session reached (or the stage it was cancelled in); Err carries the
// cause when the session did not complete.
type Result struct {
	Outcome domain.Stage
	Err     error
}

// Succeeded reports whether the session completed all stages.
func (r Result) Succeeded() bool {
	return r.Outcome == domain.StageExit && r.Err == nil
}

// Cancelled reports whether the operator aborted the session. Artifacts
// committed before the abort are still in the store.
func (r Result) Cancelled() bool {
	return errors.Is(r.Err, domain.ErrCancelled)
}

// Wizard is the high-level entry point for the spherecal library. It wraps
// the internal calibration runtime and provides a simplified API for
// consumers.
type Wizard struct {
	runtime *runtime.Engine

	store        ports.ConfigStore
	cam          ports.CameraModel
	front        Frontend
	circFitter   ports.CircumferenceFitter
	poseFitter   ports.PoseFitter
	hooks        domain.LifecycleHooks
	logger       *slog.Logger
	snapshot     ports.SnapshotWriter
	snapshotPath string
}

// Option defines a functional option for configuring the Wizard.
type Option func(*Wizard)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(w *Wizard) {
		w.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the wizard.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Wizard) {
		w.logger = logger
	}
}

// WithFitters overrides the default numeric estimators.
func WithFitters(circ ports.CircumferenceFitter, pose ports.PoseFitter) Option {
	return func(w *Wizard) {
		w.circFitter = circ
		w.poseFitter = pose
	}
}

// WithSnapshot writes an annotated image of the final overlay to path when
// the session completes.
func WithSnapshot(writer ports.SnapshotWriter, path string) Option {
	return func(w *Wizard) {
		w.snapshot = writer
		w.snapshotPath = path
	}
}

// New initializes a Wizard over the given store, camera model and frontend.
// The default fitters come from the bundled gonum implementations.
func New(store ports.ConfigStore, cam ports.CameraModel, front Frontend, opts ...Option) (*Wizard, error) {
	w := &Wizard{
		store: store,
		cam:   cam,
		front: front,
	}
	for _, opt := range opts {
		opt(w)
	}

	if w.store == nil {
		return nil, errors.New("a config store is required")
	}
	if w.cam == nil {
		return nil, errors.New("a camera model is required")
	}
	if w.front.Frames == nil || w.front.Input == nil || w.front.Renderer == nil || w.front.Prompter == nil {
		return nil, errors.New("all four frontend ports are required")
	}

	if w.circFitter == nil {
		w.circFitter = fit.NewCircumferenceFitter()
	}
	if w.poseFitter == nil {
		w.poseFitter = fit.NewPoseFitter()
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	engineOpts := []runtime.EngineOption{
		runtime.WithLogger(w.logger),
		runtime.WithLifecycleHooks(w.hooks),
	}
	if w.snapshot != nil {
		engineOpts = append(engineOpts, runtime.WithSnapshot(w.snapshot, w.snapshotPath))
	}

	w.runtime = runtime.NewEngine(
		w.store,
		w.cam,
		runtime.Fitters{Circumference: w.circFitter, Pose: w.poseFitter},
		runtime.Frontend{
			Frames:   w.front.Frames,
			Input:    w.front.Input,
			Renderer: w.front.Renderer,
			Prompter: w.front.Prompter,
		},
		engineOpts...,
	)

	return w, nil
}

// Run walks the wizard to a terminal stage and reports the outcome.
// Cancelling the context aborts the session; artifacts committed before the
// abort stay in the store.
func (w *Wizard) Run(ctx context.Context) Result {
	stage, err := w.runtime.Run(ctx)
	return Result{Outcome: stage, Err: err}
}

// Session exposes the live session state, mainly for frontends that need to
// inspect progress out of band.
func (w *Wizard) Session() *domain.Session {
	return w.runtime.Session()
}
