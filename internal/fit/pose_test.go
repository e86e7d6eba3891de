package fit

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/spherecal/pkg/camera"
	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
	"github.com/aretw0/spherecal/pkg/ports"
)

// projectCorners renders the reference square under a known pose.
func projectCorners(t *testing.T, cam ports.CameraModel, ref [4]r3.Vector, pose geom.Pose) []geom.Point2D {
	t.Helper()
	clicked := make([]geom.Point2D, 0, 4)
	for _, c := range ref {
		p, ok := cam.VectorToPixel(pose.Apply(c))
		require.True(t, ok, "synthetic corner behind the camera")
		clicked = append(clicked, p)
	}
	return clicked
}

func TestEstimatePose_RefinesToReprojection(t *testing.T) {
	cam := camera.NewRectilinear(640, 480, 45*math.Pi/180)
	ref, ok := domain.MethodXY.ReferenceCorners()
	require.True(t, ok)

	truth := geom.Pose{
		R: geom.FromAxisAngle(r3.Vector{X: 0.10, Y: -0.20, Z: 0.05}),
		T: r3.Vector{X: 0.2, Y: -0.1, Z: 2.5},
	}
	clicked := projectCorners(t, cam, ref, truth)
	guess := geom.Pose{
		R: geom.FromAxisAngle(r3.Vector{X: 0.05, Y: -0.15}),
		T: r3.Vector{Z: 2},
	}

	est, err := NewPoseFitter().EstimatePoseFromSquare(context.Background(), ref, clicked, cam, guess)
	require.NoError(t, err)

	for i, c := range ref {
		p, visible := cam.VectorToPixel(est.Apply(c))
		require.True(t, visible)
		assert.InDelta(t, clicked[i].X, p.X, 0.5, "corner %d x", i)
		assert.InDelta(t, clicked[i].Y, p.Y, 0.5, "corner %d y", i)
	}
	assert.InDelta(t, 1.0, est.R.Det(), 1e-6, "estimate must be a proper rotation")
}

func TestEstimatePose_ExactGuessIsStable(t *testing.T) {
	cam := camera.NewRectilinear(640, 480, 45*math.Pi/180)
	ref, _ := domain.MethodYZ.ReferenceCorners()

	truth := geom.Pose{
		R: geom.FromAxisAngle(r3.Vector{Y: 0.3}),
		T: r3.Vector{X: -0.2, Y: 0.1, Z: 3},
	}
	clicked := projectCorners(t, cam, ref, truth)

	est, err := NewPoseFitter().EstimatePoseFromSquare(context.Background(), ref, clicked, cam, truth)
	require.NoError(t, err)

	assert.InDelta(t, truth.T.X, est.T.X, 1e-3)
	assert.InDelta(t, truth.T.Y, est.T.Y, 1e-3)
	assert.InDelta(t, truth.T.Z, est.T.Z, 1e-3)
}

func TestEstimatePose_MirroredGuessStillYieldsProperRotation(t *testing.T) {
	cam := camera.NewRectilinear(640, 480, 45*math.Pi/180)
	ref, _ := domain.MethodXY.ReferenceCorners()

	truth := geom.Pose{
		R: geom.FromAxisAngle(r3.Vector{X: 0.2, Y: 0.1}),
		T: r3.Vector{Z: 2.5},
	}
	clicked := projectCorners(t, cam, ref, truth)

	mirrored := truth
	mirrored.R = truth.R.NegateColumn(2)

	est, err := NewPoseFitter().EstimatePoseFromSquare(context.Background(), ref, clicked, cam, mirrored)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, est.R.Det(), 1e-6)
}

func TestEstimatePose_RejectsWrongCornerCount(t *testing.T) {
	cam := camera.NewRectilinear(640, 480, 45*math.Pi/180)
	ref, _ := domain.MethodXY.ReferenceCorners()

	_, err := NewPoseFitter().EstimatePoseFromSquare(context.Background(), ref,
		[]geom.Point2D{geom.Pt(1, 1), geom.Pt(2, 2), geom.Pt(3, 3)}, cam, geom.Pose{R: geom.Identity()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly 4")
}

func TestEstimatePose_HonoursCancelledContext(t *testing.T) {
	cam := camera.NewRectilinear(640, 480, 45*math.Pi/180)
	ref, _ := domain.MethodXY.ReferenceCorners()
	ctx, cancelFn := context.WithCancel(context.Background())
	cancelFn()

	_, err := NewPoseFitter().EstimatePoseFromSquare(ctx, ref,
		[]geom.Point2D{geom.Pt(1, 1), geom.Pt(2, 2), geom.Pt(3, 3), geom.Pt(4, 4)}, cam,
		geom.Pose{R: geom.Identity(), T: r3.Vector{Z: 1}})
	require.ErrorIs(t, err, context.Canceled)
}
