package camera

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/spherecal/pkg/geom"
)

func TestRectilinear_CentrePixelLooksForward(t *testing.T) {
	cam := NewRectilinear(640, 480, 45*math.Pi/180)

	v := cam.PixelToVector(geom.Pt(320, 240))
	assert.InDelta(t, 0, v.X, 1e-12)
	assert.InDelta(t, 0, v.Y, 1e-12)
	assert.InDelta(t, 1, v.Z, 1e-12)
}

func TestRectilinear_RoundTrip(t *testing.T) {
	cam := NewRectilinear(640, 480, 45*math.Pi/180)

	for _, p := range []geom.Point2D{
		geom.Pt(320, 240),
		geom.Pt(10, 20),
		geom.Pt(600, 400),
		geom.Pt(0, 479),
	} {
		back, ok := cam.VectorToPixel(cam.PixelToVector(p))
		require.True(t, ok)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestRectilinear_FrameEdgeMatchesFieldOfView(t *testing.T) {
	vfov := 50 * math.Pi / 180
	cam := NewRectilinear(640, 480, vfov)

	// The bottom edge of the frame sits half the vertical FOV off axis.
	v := cam.PixelToVector(geom.Pt(320, 480))
	angle := math.Acos(v.Z)
	assert.InDelta(t, vfov/2, angle, 1e-9)
}

func TestRectilinear_BehindCameraNotProjectable(t *testing.T) {
	cam := NewRectilinear(640, 480, 45*math.Pi/180)

	_, ok := cam.VectorToPixel(r3.Vector{X: 0.1, Y: 0.1, Z: -1})
	assert.False(t, ok)

	_, ok = cam.VectorToPixel(r3.Vector{X: 1, Z: 0})
	assert.False(t, ok)
}

func TestFisheye_CentrePixelLooksForward(t *testing.T) {
	cam := NewFisheye(480, 480, math.Pi)

	v := cam.PixelToVector(geom.Pt(240, 240))
	assert.InDelta(t, 1, v.Z, 1e-12)

	p, ok := cam.VectorToPixel(r3.Vector{Z: 2})
	require.True(t, ok)
	assert.InDelta(t, 240, p.X, 1e-9)
	assert.InDelta(t, 240, p.Y, 1e-9)
}

func TestFisheye_RoundTrip(t *testing.T) {
	cam := NewFisheye(480, 480, math.Pi)

	for _, p := range []geom.Point2D{
		geom.Pt(240, 240),
		geom.Pt(100, 300),
		geom.Pt(30, 60),
		geom.Pt(400, 250),
	} {
		back, ok := cam.VectorToPixel(cam.PixelToVector(p))
		require.True(t, ok)
		assert.InDelta(t, p.X, back.X, 1e-9)
		assert.InDelta(t, p.Y, back.Y, 1e-9)
	}
}

func TestFisheye_SeesBeyondNinetyDegrees(t *testing.T) {
	cam := NewFisheye(480, 480, 1.5*math.Pi)

	// Sideways is 90 degrees off axis, inside a 270 degree fisheye sweep.
	p, ok := cam.VectorToPixel(r3.Vector{X: 1})
	require.True(t, ok)
	assert.Greater(t, p.X, 240.0)

	_, ok = cam.VectorToPixel(r3.Vector{Z: -1})
	assert.False(t, ok)
}
