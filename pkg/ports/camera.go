package ports

import (
	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/geom"
)

// CameraModel maps between image pixels and view rays. A model is fixed at
// construction by image size and field of view; the wizard only ever projects,
// it never calibrates the camera itself.
type CameraModel interface {
	// Width returns the image width in pixels.
	Width() int
	// Height returns the image height in pixels.
	Height() int

	// PixelToVector returns the unit view ray through the given pixel.
	PixelToVector(p geom.Point2D) r3.Vector

	// VectorToPixel projects a camera-frame direction to a pixel. The second
	// result is false when the direction does not project into the image
	// (behind the camera for a rectilinear model).
	VectorToPixel(v r3.Vector) (geom.Point2D, bool)
}
