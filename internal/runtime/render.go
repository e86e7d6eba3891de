package runtime

import (
	"math"

	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
	"github.com/aretw0/spherecal/pkg/ports"
)

// circleSamples is the number of directions sampled when drawing the
// fitted circumference.
const circleSamples = 100

// clickRadius scales marker size with the frame so points stay visible
// on large captures.
func clickRadius(cam ports.CameraModel) float64 {
	r := cam.Width() / 150
	if r < 5 {
		r = 5
	}
	return float64(r)
}

func stageInstruction(stage domain.Stage, method domain.Method) string {
	switch stage {
	case domain.StageCircPts:
		return "Click at least 3 points spread around the sphere's visible edge. Backspace removes the last point, Enter accepts."
	case domain.StageIgnrPts:
		return "Outline any regions to ignore (the subject, reflections). Enter closes the current shape; Enter again on an empty shape finishes."
	case domain.StageRSlct:
		return "Choose how to define the camera-to-subject transform."
	case domain.StageRXY, domain.StageRYZ, domain.StageRXZ:
		return "Click the 4 corners of the " + method.Label() + " square in order. Press f to flip the pose if the drawn axes look mirrored, Enter accepts."
	default:
		return ""
	}
}

// BuildDisplay assembles the overlay model for the current session state.
// Overlays are cumulative: everything committed in earlier stages stays
// visible while later stages collect on top of it.
func BuildDisplay(sess *domain.Session, cam ports.CameraModel, notice string) domain.DisplayModel {
	model := domain.DisplayModel{
		Stage:       sess.Stage,
		Instruction: stageInstruction(sess.Stage, sess.Method),
		Notice:      notice,
	}
	radius := clickRadius(cam)

	for i, p := range sess.CircPoints {
		model.Markers = append(model.Markers, domain.Marker{
			Point:        p,
			PaletteIndex: i % domain.PaletteSize,
			Radius:       radius,
		})
	}
	if sess.FitRadius > 0 {
		if circle := sampleCircle(sess.FitAxis, sess.FitRadius, cam); len(circle) > 1 {
			model.Polylines = append(model.Polylines, domain.Polyline{
				Role:   domain.RoleCircumference,
				Points: circle,
				Closed: true,
			})
		}
	}

	for i, poly := range sess.IgnoreRegions {
		if len(poly) == 0 {
			continue
		}
		// The active polygon stays open while it is still being drawn.
		closed := sess.Stage != domain.StageIgnrPts || i < len(sess.IgnoreRegions)-1
		model.Polylines = append(model.Polylines, domain.Polyline{
			Role:   domain.RoleIgnoreRegion,
			Points: poly.Clone(),
			Closed: closed,
		})
	}

	for i, p := range sess.SquareCorners {
		model.Markers = append(model.Markers, domain.Marker{
			Point:        p,
			PaletteIndex: i % domain.PaletteSize,
			Radius:       radius,
		})
	}
	if sess.HasTransform {
		model.Polylines = append(model.Polylines, poseOverlays(sess, cam)...)
	}

	return model
}

// sampleCircle projects the fitted sphere outline back into the image.
// Directions are swept around the fitted axis at the fitted angular
// radius; samples that leave the view are skipped.
func sampleCircle(axis r3.Vector, angularRadius float64, cam ports.CameraModel) []geom.Point2D {
	u, v := basisAround(axis)
	sinR := math.Sin(angularRadius)
	cosR := math.Cos(angularRadius)

	points := make([]geom.Point2D, 0, circleSamples)
	for i := 0; i < circleSamples; i++ {
		t := 2 * math.Pi * float64(i) / circleSamples
		dir := axis.Mul(cosR).
			Add(u.Mul(sinR * math.Cos(t))).
			Add(v.Mul(sinR * math.Sin(t)))
		if p, ok := cam.VectorToPixel(dir); ok {
			points = append(points, p)
		}
	}
	return points
}

// basisAround returns two unit vectors orthogonal to axis and each other.
func basisAround(axis r3.Vector) (r3.Vector, r3.Vector) {
	ref := r3.Vector{Z: 1}
	if math.Abs(axis.Dot(ref)) > 0.9 {
		ref = r3.Vector{X: 1}
	}
	u := axis.Cross(ref)
	if n := u.Norm(); n > 0 {
		u = u.Mul(1 / n)
	}
	return u, axis.Cross(u)
}

// poseOverlays draws the estimated square and the subject's axes so the
// user can judge the pose (and spot a mirrored solution) at a glance.
func poseOverlays(sess *domain.Session, cam ports.CameraModel) []domain.Polyline {
	ref, ok := sess.Method.ReferenceCorners()
	if !ok {
		return nil
	}

	var overlays []domain.Polyline
	square := make([]geom.Point2D, 0, 4)
	for _, corner := range ref {
		if p, visible := cam.VectorToPixel(sess.Transform.Apply(corner)); visible {
			square = append(square, p)
		}
	}
	if len(square) > 1 {
		overlays = append(overlays, domain.Polyline{
			Role:   domain.RoleSquare,
			Points: square,
			Closed: len(square) == 4,
		})
	}

	axes := []struct {
		role domain.Role
		dir  r3.Vector
	}{
		{domain.RoleAxisX, r3.Vector{X: 1}},
		{domain.RoleAxisY, r3.Vector{Y: 1}},
		{domain.RoleAxisZ, r3.Vector{Z: 1}},
	}
	origin, originVisible := cam.VectorToPixel(sess.Transform.Apply(r3.Vector{}))
	if !originVisible {
		return overlays
	}
	for _, axis := range axes {
		tip, visible := cam.VectorToPixel(sess.Transform.Apply(axis.dir.Mul(0.5)))
		if !visible {
			continue
		}
		overlays = append(overlays, domain.Polyline{
			Role:   axis.role,
			Points: []geom.Point2D{origin, tip},
		})
	}
	return overlays
}
