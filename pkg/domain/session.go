package domain

import (
	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/geom"
)

// Session is the mutable state of one wizard run. It is constructed once,
// pre-populated from whatever artifacts the config store already holds, and
// mutated only by collector operations and validated stage transitions.
// Uncommitted edits die with the session; committed artifacts survive it.
type Session struct {
	Stage Stage

	// CircPoints are the clicked sphere-circumference points in click order.
	CircPoints []geom.Point2D
	// IgnoreRegions are the exclusion polygons; the active polygon is always
	// the last element.
	IgnoreRegions []geom.Polygon
	// SquareCorners are the clicked reference-square corners. The transform is
	// only recomputed at exactly four entries, though editing may transiently
	// hold other sizes.
	SquareCorners []geom.Point2D

	// FitAxis and FitRadius are the lazily recomputed circumference fit.
	// FitRadius <= 0 marks the fit invalid.
	FitAxis   r3.Vector
	FitRadius float64

	// Transform is the camera-to-subject pose derived from SquareCorners.
	Transform    geom.Pose
	HasTransform bool
	// Method tags which corner convention produced Transform.
	Method Method

	// Dirty is set by collector mutations and cleared once dependent fits and
	// the display have been refreshed.
	Dirty bool
}

// NewSession returns a session at the first stage with no valid fit.
func NewSession() *Session {
	return &Session{
		Stage:     StageCircInit,
		FitRadius: -1,
	}
}

// ActivePolygon returns the polygon new clicks append to, or nil when no
// polygon exists. The active polygon is by definition the last one.
func (s *Session) ActivePolygon() geom.Polygon {
	if len(s.IgnoreRegions) == 0 {
		return nil
	}
	return s.IgnoreRegions[len(s.IgnoreRegions)-1]
}

// InvalidateFit discards the circumference fit so it recomputes on next use.
func (s *Session) InvalidateFit() {
	s.FitAxis = r3.Vector{}
	s.FitRadius = -1
}
