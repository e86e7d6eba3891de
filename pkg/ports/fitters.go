package ports

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/geom"
)

// CircumferenceFitter estimates the sphere circumference as seen through the
// camera: a central axis direction and the angular radius of the cone of view
// rays grazing the sphere.
type CircumferenceFitter interface {
	// FitCircumference fits the clicked points. It fails for fewer than three
	// points or degenerate input; on success the returned radius is > 0.
	FitCircumference(ctx context.Context, points []geom.Point2D, cam CameraModel) (axis r3.Vector, angularRadius float64, err error)
}

// PoseFitter estimates the rigid camera-to-subject transform from the four
// clicked corners of a known reference square.
type PoseFitter interface {
	// EstimatePoseFromSquare aligns the reference corners to their clicked
	// pixel positions, starting the search from guess. Passing the current
	// pose as the guess is what makes a chirality flip stick: re-fitting from
	// the negated-column pose converges within the flipped handedness.
	EstimatePoseFromSquare(ctx context.Context, ref [4]r3.Vector, clicked []geom.Point2D, cam CameraModel, guess geom.Pose) (geom.Pose, error)
}
