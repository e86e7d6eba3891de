package fit

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/geom"
	"github.com/aretw0/spherecal/pkg/ports"
)

// poseResiduals measures the angular misalignment between each clicked
// corner's view ray and the candidate pose's prediction for that corner.
type poseResiduals struct {
	ref  [4]r3.Vector
	rays []r3.Vector
}

func (pr *poseResiduals) Residuals(params []float64) []float64 {
	pose := poseFromParams(params)

	residuals := make([]float64, len(pr.rays))
	for i, ray := range pr.rays {
		predicted := pose.Apply(pr.ref[i])
		n := predicted.Norm()
		if n < 1e-10 {
			// Corner collapsed onto the camera centre.
			residuals[i] = residualPenalty
			continue
		}
		residuals[i] = 1 - predicted.Mul(1/n).Dot(ray)
	}
	return residuals
}

func (pr *poseResiduals) Func(params []float64) float64 {
	sum := 0.0
	for _, r := range pr.Residuals(params) {
		sum += r * r
	}
	return sum
}

// params are [rx ry rz tx ty tz]: axis-angle rotation then translation,
// matching the order the artifacts are persisted in.
func poseFromParams(params []float64) geom.Pose {
	return geom.Pose{
		R: geom.FromAxisAngle(r3.Vector{X: params[0], Y: params[1], Z: params[2]}),
		T: r3.Vector{X: params[3], Y: params[4], Z: params[5]},
	}
}

func paramsFromPose(p geom.Pose) []float64 {
	axisAngle := p.R.ToAxisAngle()
	return []float64{axisAngle.X, axisAngle.Y, axisAngle.Z, p.T.X, p.T.Y, p.T.Z}
}

// PoseFitter estimates the rigid camera-to-subject transform that projects
// the reference square onto the four clicked corners.
type PoseFitter struct{}

// NewPoseFitter returns the default pose fitter.
func NewPoseFitter() *PoseFitter {
	return &PoseFitter{}
}

// EstimatePoseFromSquare refines guess until the reference corners reproject
// onto the clicked pixels. The guess decides the handedness basin the search
// settles in, which is exactly what the flip gesture relies on.
func (*PoseFitter) EstimatePoseFromSquare(ctx context.Context, ref [4]r3.Vector, clicked []geom.Point2D, cam ports.CameraModel, guess geom.Pose) (geom.Pose, error) {
	if err := ctx.Err(); err != nil {
		return geom.Pose{}, err
	}
	if len(clicked) != 4 {
		return geom.Pose{}, fmt.Errorf("pose fit needs exactly 4 corners, got %d", len(clicked))
	}

	pr := &poseResiduals{ref: ref, rays: make([]r3.Vector, len(clicked))}
	for i, p := range clicked {
		pr.rays[i] = cam.PixelToVector(p)
	}

	result, err := minimize(pr.Func, paramsFromPose(guess))
	if err != nil {
		return geom.Pose{}, fmt.Errorf("pose fit: %w", err)
	}
	if serr := result.Status.Err(); serr != nil && result.F > 1e-3 {
		return geom.Pose{}, fmt.Errorf("pose fit did not converge (residual %.6f): %w", result.F, serr)
	}
	for _, x := range result.X {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return geom.Pose{}, fmt.Errorf("pose fit diverged")
		}
	}

	return poseFromParams(result.X), nil
}
