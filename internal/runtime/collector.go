package runtime

import (
	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
)

// Target names the collection a collector edits. Exactly one collection is
// active at a time; each stage binds a fresh collector to its own target.
type Target int

const (
	// TargetCircumference edits Session.CircPoints.
	TargetCircumference Target = iota
	// TargetIgnoreRegions edits the last polygon of Session.IgnoreRegions.
	TargetIgnoreRegions
	// TargetCorners edits Session.SquareCorners.
	TargetCorners
)

// Collector manages the session's ordered point and polygon collections with
// append and LIFO undo. Undo removes points before polygons: emptying the
// active polygon removes the polygon itself, so the next undo edits the
// previous polygon rather than a stale empty one.
type Collector struct {
	sess   *domain.Session
	target Target
}

// NewCollector binds a collector to one of the session's collections.
func NewCollector(sess *domain.Session, target Target) *Collector {
	return &Collector{sess: sess, target: target}
}

// AddPoint appends p to the active collection. It always succeeds: for the
// polygon target a first polygon is created on demand.
func (c *Collector) AddPoint(p geom.Point2D) {
	switch c.target {
	case TargetCircumference:
		c.sess.CircPoints = append(c.sess.CircPoints, p)
	case TargetIgnoreRegions:
		if len(c.sess.IgnoreRegions) == 0 {
			c.sess.IgnoreRegions = append(c.sess.IgnoreRegions, geom.Polygon{})
		}
		last := len(c.sess.IgnoreRegions) - 1
		c.sess.IgnoreRegions[last] = append(c.sess.IgnoreRegions[last], p)
	case TargetCorners:
		c.sess.SquareCorners = append(c.sess.SquareCorners, p)
	}
	c.sess.Dirty = true
}

// UndoLast removes the most recent point of the active collection. For the
// polygon target an already-empty active polygon is removed instead, and a
// polygon emptied by the removal is dropped with it. No-op when there is
// nothing to remove.
func (c *Collector) UndoLast() {
	switch c.target {
	case TargetCircumference:
		if n := len(c.sess.CircPoints); n > 0 {
			c.sess.CircPoints = c.sess.CircPoints[:n-1]
		}
	case TargetIgnoreRegions:
		polys := c.sess.IgnoreRegions
		if len(polys) == 0 {
			break
		}
		last := len(polys) - 1
		if n := len(polys[last]); n > 0 {
			polys[last] = polys[last][:n-1]
		}
		if len(polys[last]) == 0 {
			polys = polys[:last]
		}
		c.sess.IgnoreRegions = polys
	case TargetCorners:
		if n := len(c.sess.SquareCorners); n > 0 {
			c.sess.SquareCorners = c.sess.SquareCorners[:n-1]
		}
	}
	c.sess.Dirty = true
}

// StartNewPolygon appends an empty polygon for subsequent clicks. Refused when
// the active polygon is already empty, preventing runs of empty polygons.
func (c *Collector) StartNewPolygon() {
	if n := len(c.sess.IgnoreRegions); n > 0 && len(c.sess.IgnoreRegions[n-1]) == 0 {
		return
	}
	c.sess.IgnoreRegions = append(c.sess.IgnoreRegions, geom.Polygon{})
}

// DropTrailingEmptyPolygon removes an empty active polygon without touching
// anything else. Called when finalizing the ignore-region stage, where the
// confirming Enter leaves one trailing empty polygon behind.
func (c *Collector) DropTrailingEmptyPolygon() {
	if n := len(c.sess.IgnoreRegions); n > 0 && len(c.sess.IgnoreRegions[n-1]) == 0 {
		c.sess.IgnoreRegions = c.sess.IgnoreRegions[:n-1]
	}
}
