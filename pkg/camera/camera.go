// Package camera provides the built-in camera models used to map between
// pixel coordinates and view rays. Both models assume square pixels and the
// principal point at the frame centre; anything fancier comes in through the
// CameraModel port.
package camera

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/geom"
)

// Rectilinear is an ideal pinhole camera. The focal length derives from the
// vertical field of view: f = (h/2) / tan(vfov/2).
type Rectilinear struct {
	w, h   int
	focal  float64
	cx, cy float64
}

// NewRectilinear builds a pinhole model for a width x height frame with the
// given vertical field of view in radians.
func NewRectilinear(width, height int, vfov float64) *Rectilinear {
	return &Rectilinear{
		w:     width,
		h:     height,
		focal: float64(height) / 2 / math.Tan(vfov/2),
		cx:    float64(width) / 2,
		cy:    float64(height) / 2,
	}
}

func (c *Rectilinear) Width() int  { return c.w }
func (c *Rectilinear) Height() int { return c.h }

// PixelToVector back-projects a pixel to a unit view ray in the camera frame.
func (c *Rectilinear) PixelToVector(p geom.Point2D) r3.Vector {
	return r3.Vector{X: p.X - c.cx, Y: p.Y - c.cy, Z: c.focal}.Normalize()
}

// VectorToPixel projects a camera-frame direction onto the image plane.
// Directions at or behind the plane are not projectable.
func (c *Rectilinear) VectorToPixel(v r3.Vector) (geom.Point2D, bool) {
	if v.Z <= 0 {
		return geom.Point2D{}, false
	}
	return geom.Pt(c.cx+v.X/v.Z*c.focal, c.cy+v.Y/v.Z*c.focal), true
}

// Fisheye is an equidistant fisheye model: the distance from the principal
// point is proportional to the angle off the optical axis, with the vertical
// field of view spanning the frame height.
type Fisheye struct {
	w, h      int
	radPerPix float64
	cx, cy    float64
}

// NewFisheye builds an equidistant fisheye model for a width x height frame
// with the given vertical field of view in radians.
func NewFisheye(width, height int, vfov float64) *Fisheye {
	return &Fisheye{
		w:         width,
		h:         height,
		radPerPix: vfov / float64(height),
		cx:        float64(width) / 2,
		cy:        float64(height) / 2,
	}
}

func (c *Fisheye) Width() int  { return c.w }
func (c *Fisheye) Height() int { return c.h }

func (c *Fisheye) PixelToVector(p geom.Point2D) r3.Vector {
	dx := p.X - c.cx
	dy := p.Y - c.cy
	r := math.Hypot(dx, dy)
	if r == 0 {
		return r3.Vector{Z: 1}
	}
	theta := r * c.radPerPix
	s := math.Sin(theta)
	return r3.Vector{X: s * dx / r, Y: s * dy / r, Z: math.Cos(theta)}
}

// VectorToPixel projects a camera-frame direction. Only directions strictly
// in front of the full hemisphere sweep (angle < pi) are projectable.
func (c *Fisheye) VectorToPixel(v r3.Vector) (geom.Point2D, bool) {
	n := v.Norm()
	if n == 0 {
		return geom.Point2D{}, false
	}
	cosT := v.Z / n
	if cosT > 1 {
		cosT = 1
	} else if cosT < -1 {
		cosT = -1
	}
	theta := math.Acos(cosT)
	if theta >= math.Pi-1e-9 {
		return geom.Point2D{}, false
	}
	rxy := math.Hypot(v.X, v.Y)
	if rxy == 0 {
		return geom.Pt(c.cx, c.cy), true
	}
	r := theta / c.radPerPix
	return geom.Pt(c.cx+v.X/rxy*r, c.cy+v.Y/rxy*r), true
}
