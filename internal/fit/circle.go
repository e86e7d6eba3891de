// Package fit provides the built-in geometry estimators: the circumference
// cone fit and the reference-square pose fit. Both are Nelder-Mead
// minimizations over angular reprojection residuals, seeded well enough that
// the simplex starts inside the right basin.
package fit

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/optimize"

	"github.com/aretw0/spherecal/pkg/geom"
	"github.com/aretw0/spherecal/pkg/ports"
)

const (
	maxEvaluations = 50000
	tolerance      = 1e-10

	// residualPenalty keeps the simplex away from degenerate configurations.
	residualPenalty = 1e10
)

// minimize runs the shared Nelder-Mead configuration.
func minimize(objective func([]float64) float64, x0 []float64) (*optimize.Result, error) {
	problem := optimize.Problem{
		Func: objective,
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvaluations,
		Converger: &optimize.FunctionConverge{
			Absolute: tolerance,
			Relative: tolerance,
		},
	}
	return optimize.Minimize(problem, x0, settings, &optimize.NelderMead{})
}

func clampUnit(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

// direction maps azimuth/elevation parameters to a unit vector. The inverse
// is used to seed the search from the mean view ray.
func direction(az, el float64) r3.Vector {
	cosEl := math.Cos(el)
	return r3.Vector{
		X: cosEl * math.Sin(az),
		Y: math.Sin(el),
		Z: cosEl * math.Cos(az),
	}
}

func anglesOf(v r3.Vector) (az, el float64) {
	return math.Atan2(v.X, v.Z), math.Asin(clampUnit(v.Y))
}

// circumferenceResiduals measures, per clicked point, how far its view ray
// sits off the candidate cone surface.
type circumferenceResiduals struct {
	rays []r3.Vector
}

func (cr *circumferenceResiduals) Residuals(params []float64) []float64 {
	axis := direction(params[0], params[1])
	angularRadius := params[2]

	residuals := make([]float64, len(cr.rays))
	for i, ray := range cr.rays {
		angle := math.Acos(clampUnit(axis.Dot(ray)))
		residuals[i] = angle - angularRadius
	}
	return residuals
}

func (cr *circumferenceResiduals) Func(params []float64) float64 {
	sum := 0.0
	for _, r := range cr.Residuals(params) {
		sum += r * r
	}
	return sum
}

// CircumferenceFitter estimates the cone of view rays grazing the sphere:
// the direction of the sphere centre and the angular radius of its outline.
type CircumferenceFitter struct{}

// NewCircumferenceFitter returns the default circumference fitter.
func NewCircumferenceFitter() *CircumferenceFitter {
	return &CircumferenceFitter{}
}

func (*CircumferenceFitter) FitCircumference(ctx context.Context, points []geom.Point2D, cam ports.CameraModel) (r3.Vector, float64, error) {
	if err := ctx.Err(); err != nil {
		return r3.Vector{}, 0, err
	}
	if len(points) < 3 {
		return r3.Vector{}, 0, fmt.Errorf("circumference fit needs at least 3 points, got %d", len(points))
	}

	cr := &circumferenceResiduals{rays: make([]r3.Vector, len(points))}
	mean := r3.Vector{}
	for i, p := range points {
		cr.rays[i] = cam.PixelToVector(p)
		mean = mean.Add(cr.rays[i])
	}
	if mean.Norm() < 1e-9 {
		return r3.Vector{}, 0, fmt.Errorf("clicked points have no common viewing direction")
	}
	mean = mean.Normalize()

	// Seed: centre at the mean ray, radius at the mean deviation from it.
	az0, el0 := anglesOf(mean)
	r0 := 0.0
	for _, ray := range cr.rays {
		r0 += math.Acos(clampUnit(mean.Dot(ray)))
	}
	r0 /= float64(len(cr.rays))

	result, err := minimize(cr.Func, []float64{az0, el0, r0})
	if err != nil {
		return r3.Vector{}, 0, fmt.Errorf("circumference fit: %w", err)
	}
	if serr := result.Status.Err(); serr != nil && result.F > 1e-3 {
		return r3.Vector{}, 0, fmt.Errorf("circumference fit did not converge (residual %.6f): %w", result.F, serr)
	}

	angularRadius := result.X[2]
	if math.IsNaN(angularRadius) || angularRadius <= 1e-4 || angularRadius >= math.Pi/2 {
		return r3.Vector{}, 0, fmt.Errorf("degenerate circumference fit (angular radius %.6f)", angularRadius)
	}
	return direction(result.X[0], result.X[1]), angularRadius, nil
}
