package ports

import (
	"context"
	"image"

	"github.com/aretw0/spherecal/pkg/domain"
)

// FrameSource yields the single still frame the wizard annotates. The frame is
// grabbed once at session start and reused for every overlay and the final
// snapshot.
type FrameSource interface {
	// Grab returns one grayscale frame.
	Grab(ctx context.Context) (image.Image, error)
	Close() error
}

// InputSource delivers discrete operator events to the wizard, one per cycle.
type InputSource interface {
	// Next blocks until an event is available. It returns an error when the
	// source is exhausted or the context ends; the wizard treats either as a
	// session cancel.
	Next(ctx context.Context) (domain.InputEvent, error)
}

// Renderer receives the live overlay state. Presentation failures are the
// frontend's concern, never the wizard's.
type Renderer interface {
	// Begin hands the frontend the backdrop frame before the first cycle.
	Begin(frame image.Image) error
	// Present replaces the current overlay with model.
	Present(model domain.DisplayModel)
}

// Rasterizer burns a display model into a copy of the frame. Used for the
// remote preview and as the first half of snapshot writing.
type Rasterizer interface {
	Rasterize(frame image.Image, model domain.DisplayModel) (image.Image, error)
}

// SnapshotWriter persists the final annotated frame. A snapshot failure is a
// reporting defect only and has no bearing on calibration correctness.
type SnapshotWriter interface {
	WriteSnapshot(frame image.Image, model domain.DisplayModel, path string) error
}

// Prompter asks the operator the wizard's terminal questions. Implementations
// own input resolution (defaults, re-prompting on junk); the wizard only sees
// the resolved answer.
type Prompter interface {
	// ConfirmKeep asks whether to keep a previously stored artifact. True
	// means keep; false means discard and re-collect.
	ConfirmKeep(ctx context.Context, prompt string) (bool, error)

	// SelectMethod presents the transform method menu and returns the chosen
	// number. Implementations resolve empty input to 1 but pass through
	// out-of-range numbers for the wizard to validate.
	SelectMethod(ctx context.Context) (int, error)
}
