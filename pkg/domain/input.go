package domain

import (
	"github.com/aretw0/spherecal/pkg/geom"
)

// InputKind classifies a discrete operator event. Frontends translate raw
// pointer/keyboard activity into these; the wizard core never sees raw events.
type InputKind string

const (
	// InputClick places a point at Event.Point.
	InputClick InputKind = "click"
	// InputUndo removes the most recent point (points before polygons).
	InputUndo InputKind = "undo"
	// InputConfirm accepts the current stage's collection.
	InputConfirm InputKind = "confirm"
	// InputCancel aborts the whole session, keeping prior commits.
	InputCancel InputKind = "cancel"
	// InputFlip corrects the handedness of the current pose estimate.
	InputFlip InputKind = "flip"
)

// InputEvent is one discrete operator action. Point is meaningful only for
// InputClick.
type InputEvent struct {
	Kind  InputKind    `json:"kind"`
	Point geom.Point2D `json:"point,omitempty"`
}

// Click builds a click event at (x, y).
func Click(x, y float64) InputEvent {
	return InputEvent{Kind: InputClick, Point: geom.Pt(x, y)}
}
