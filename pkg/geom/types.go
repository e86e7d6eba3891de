package geom

import (
	"math"
)

// Point2D represents a position in image pixel space. Click coordinates are
// collected as floats and only rounded when persisted.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Pt is a convenience constructor.
func Pt(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Add returns the point translated by q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns the vector from q to p.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{X: p.X - q.X, Y: p.Y - q.Y}
}

// Distance returns the Euclidean distance to q.
func (p Point2D) Distance(q Point2D) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// RoundX returns the X coordinate rounded to the nearest integer.
func (p Point2D) RoundX() int { return int(math.Floor(p.X + 0.5)) }

// RoundY returns the Y coordinate rounded to the nearest integer.
func (p Point2D) RoundY() int { return int(math.Floor(p.Y + 0.5)) }

// Polygon is an ordered ring of pixel points. It is not required to be closed;
// consumers treat the last-to-first edge as implicit.
type Polygon []Point2D

// Clone returns an independent copy of the polygon.
func (pg Polygon) Clone() Polygon {
	out := make(Polygon, len(pg))
	copy(out, pg)
	return out
}

// ClonePolygons deep-copies a polygon list.
func ClonePolygons(in []Polygon) []Polygon {
	out := make([]Polygon, len(in))
	for i, pg := range in {
		out[i] = pg.Clone()
	}
	return out
}

// FlattenPoints converts points to a flat [x0 y0 x1 y1 ...] integer list,
// rounding each coordinate. This is the persisted shape of click collections.
func FlattenPoints(pts []Point2D) []int {
	flat := make([]int, 0, 2*len(pts))
	for _, p := range pts {
		flat = append(flat, p.RoundX(), p.RoundY())
	}
	return flat
}

// UnflattenPoints converts a flat integer list back to points. A trailing odd
// value is discarded.
func UnflattenPoints(flat []int) []Point2D {
	n := len(flat) / 2
	pts := make([]Point2D, 0, n)
	for i := 0; i+1 < len(flat); i += 2 {
		pts = append(pts, Point2D{X: float64(flat[i]), Y: float64(flat[i+1])})
	}
	return pts
}
