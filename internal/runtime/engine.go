package runtime

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
	"github.com/aretw0/spherecal/pkg/ports"
)

// Fitters bundles the numeric estimators the wizard calls out to.
type Fitters struct {
	Circumference ports.CircumferenceFitter
	Pose          ports.PoseFitter
}

// Frontend bundles the user-facing ports for one session. All fields are
// required; the engine never checks them for nil.
type Frontend struct {
	Frames   ports.FrameSource
	Input    ports.InputSource
	Renderer ports.Renderer
	Prompter ports.Prompter
}

// Engine walks one calibration session through its stages, reading and
// committing artifacts through the injected store and delegating all
// geometry to the injected fitters.
type Engine struct {
	store ports.ConfigStore
	cam   ports.CameraModel
	fit   Fitters
	front Frontend

	logger *slog.Logger
	hooks  domain.LifecycleHooks

	snapshot     ports.SnapshotWriter
	snapshotPath string

	sess   *domain.Session
	frame  image.Image
	notice string
}

// EngineOption configures optional engine behavior.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks for stage changes,
// commits and fitter runs.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithSnapshot writes a debug image of the final overlay state to path when
// the session completes.
func WithSnapshot(w ports.SnapshotWriter, path string) EngineOption {
	return func(e *Engine) {
		e.snapshot = w
		e.snapshotPath = path
	}
}

// NewEngine creates a calibration engine over the given dependencies.
func NewEngine(store ports.ConfigStore, cam ports.CameraModel, fit Fitters, front Frontend, opts ...EngineOption) *Engine {
	e := &Engine{
		store:  store,
		cam:    cam,
		fit:    fit,
		front:  front,
		logger: slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Session exposes the live session state, mainly for frontends that need
// to inspect progress out of band.
func (e *Engine) Session() *domain.Session {
	return e.sess
}

// Run executes the wizard until it reaches a terminal stage. It returns the
// terminal stage together with the error that ended the session, if any.
// Artifacts committed before a cancellation or failure stay in the store.
func (e *Engine) Run(ctx context.Context) (domain.Stage, error) {
	start := time.Now()

	// An unreadable or unparsable document is treated as absent: the wizard
	// still runs, it just cannot offer resume prompts.
	if err := e.store.Load(ctx); err != nil {
		e.logger.Warn("config load failed, starting from an empty document", "err", err)
	}

	frame, err := e.front.Frames.Grab(ctx)
	if err != nil {
		return domain.StageFailed, fmt.Errorf("%w: %v", domain.ErrNoFrame, err)
	}
	e.frame = frame
	if err := e.front.Renderer.Begin(frame); err != nil {
		return domain.StageFailed, fmt.Errorf("initializing renderer: %w", err)
	}

	e.sess = domain.NewSession()
	for !e.sess.Stage.Terminal() {
		stage := e.sess.Stage
		e.fireStage(ctx, domain.EventStageEnter, stage)
		next, err := e.step(ctx, stage)
		e.fireStage(ctx, domain.EventStageLeave, stage)
		if err != nil {
			if errors.Is(err, domain.ErrWriteFailed) {
				e.logger.Error("config write failed, aborting calibration", "stage", string(stage), "err", err)
				e.sess.Stage = domain.StageFailed
				return domain.StageFailed, err
			}
			return stage, err
		}
		e.logger.Debug("stage complete", "stage", string(stage), "next", string(next))
		e.sess.Stage = next
	}

	if e.sess.Stage == domain.StageExit {
		e.writeSnapshot()
	}
	e.logger.Info("calibration session finished",
		"stage", string(e.sess.Stage),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return e.sess.Stage, nil
}

func (e *Engine) step(ctx context.Context, stage domain.Stage) (domain.Stage, error) {
	switch stage {
	case domain.StageCircInit:
		return e.enterCircInit(ctx)
	case domain.StageCircPts:
		return e.runCircPts(ctx)
	case domain.StageIgnrInit:
		return e.enterIgnrInit(ctx)
	case domain.StageIgnrPts:
		return e.runIgnrPts(ctx)
	case domain.StageRInit:
		return e.enterRInit(ctx)
	case domain.StageRSlct:
		return e.runRSlct(ctx)
	case domain.StageRXY, domain.StageRYZ, domain.StageRXZ:
		return e.runCornerStage(ctx)
	case domain.StageRExt:
		return e.enterRExt(ctx)
	default:
		return domain.StageFailed, fmt.Errorf("unknown stage %q", stage)
	}
}

// present pushes the current overlay state to the frontend. A pending
// notice is shown exactly once.
func (e *Engine) present() {
	e.front.Renderer.Present(BuildDisplay(e.sess, e.cam, e.notice))
	e.notice = ""
}

// commit flushes all staged artifacts. Write failures are fatal for the
// session, so they are tagged for the run loop to catch.
func (e *Engine) commit(ctx context.Context, keys ...string) error {
	err := e.store.Write(ctx)
	e.fireCommit(ctx, e.sess.Stage, keys, err)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	e.logger.Info("calibration artifacts committed", "stage", string(e.sess.Stage), "keys", keys)
	return nil
}

// refreshCircFit re-runs the circumference fitter after the point set
// changed. Fewer than three points, or a failed fit, clears the overlay
// instead of blocking the operator.
func (e *Engine) refreshCircFit(ctx context.Context) {
	if !e.sess.Dirty {
		return
	}
	e.sess.Dirty = false
	e.sess.FitAxis, e.sess.FitRadius = r3.Vector{}, -1
	if len(e.sess.CircPoints) < 3 {
		return
	}

	start := time.Now()
	axis, radius, err := e.fit.Circumference.FitCircumference(ctx, e.sess.CircPoints, e.cam)
	e.fireFit(ctx, "circumference", len(e.sess.CircPoints), time.Since(start), err)
	if err != nil {
		e.logger.Warn("circumference fit failed", "points", len(e.sess.CircPoints), "err", err)
		return
	}
	e.sess.FitAxis, e.sess.FitRadius = axis, radius
}

// recomputePose re-estimates the rigid transform from the four clicked
// corners, seeding the minimizer with guess so a handedness flip sticks.
func (e *Engine) recomputePose(ctx context.Context, guess geom.Pose) {
	ref, ok := e.sess.Method.ReferenceCorners()
	if !ok || len(e.sess.SquareCorners) != 4 {
		return
	}

	start := time.Now()
	pose, err := e.fit.Pose.EstimatePoseFromSquare(ctx, ref, e.sess.SquareCorners, e.cam, guess)
	e.fireFit(ctx, "pose", len(e.sess.SquareCorners), time.Since(start), err)
	if err != nil {
		e.sess.HasTransform = false
		e.logger.Warn("pose estimate failed", "method", string(e.sess.Method), "err", err)
		e.notice = "Pose estimate failed. Adjust the corners and try again."
		return
	}
	e.sess.Transform, e.sess.HasTransform = pose, true
}

func (e *Engine) writeSnapshot() {
	if e.snapshot == nil || e.snapshotPath == "" {
		return
	}
	model := BuildDisplay(e.sess, e.cam, "")
	if err := e.snapshot.WriteSnapshot(e.frame, model, e.snapshotPath); err != nil {
		e.logger.Warn("debug snapshot not written", "path", e.snapshotPath, "err", err)
		return
	}
	e.logger.Info("debug snapshot written", "path", e.snapshotPath)
}

func (e *Engine) fireStage(ctx context.Context, typ domain.EventType, stage domain.Stage) {
	fn := e.hooks.OnStageEnter
	if typ == domain.EventStageLeave {
		fn = e.hooks.OnStageLeave
	}
	if fn == nil {
		return
	}
	fn(ctx, &domain.StageEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: typ},
		Stage:     stage,
	})
}

func (e *Engine) fireCommit(ctx context.Context, stage domain.Stage, keys []string, err error) {
	if e.hooks.OnCommit == nil {
		return
	}
	e.hooks.OnCommit(ctx, &domain.CommitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommit},
		Stage:     stage,
		Keys:      keys,
		Err:       err,
	})
}

func (e *Engine) fireFit(ctx context.Context, fit string, points int, elapsed time.Duration, err error) {
	if e.hooks.OnFit == nil {
		return
	}
	e.hooks.OnFit(ctx, &domain.FitEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventFit},
		Stage:     e.sess.Stage,
		Fit:       fit,
		Points:    points,
		Duration:  elapsed,
		Err:       err,
	})
}
