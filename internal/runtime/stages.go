package runtime

import (
	"context"

	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
)

// reject surfaces a recoverable validation failure: the stage loops and the
// operator sees the reason once, the store is never touched.
func (e *Engine) reject(verr *domain.ValidationError) {
	e.logger.Warn("input rejected", "stage", string(verr.Stage), "reason", verr.Reason)
	e.notice = verr.Reason
}

// enterCircInit offers to resume a previously committed sphere outline.
// Anything short of a full, fittable point set is treated as absent.
func (e *Engine) enterCircInit(ctx context.Context) (domain.Stage, error) {
	flat, found := StoredInts(e.store, domain.KeyCircRoi)
	if !found {
		return domain.StageCircPts, nil
	}
	points := geom.UnflattenPoints(flat)
	if len(points) < 3 {
		return domain.StageCircPts, nil
	}

	e.sess.CircPoints = points
	e.sess.Dirty = true
	e.refreshCircFit(ctx)
	if e.sess.FitRadius <= 0 {
		// Stored points that no longer fit are useless; start over silently.
		e.sess.CircPoints = nil
		return domain.StageCircPts, nil
	}

	e.present()
	keep, err := e.front.Prompter.ConfirmKeep(ctx, "Use previously configured sphere circumference?")
	if err != nil {
		return e.sess.Stage, err
	}
	if keep {
		return domain.StageIgnrInit, nil
	}
	e.sess.CircPoints = nil
	e.sess.InvalidateFit()
	return domain.StageCircPts, nil
}

// runCircPts collects circumference clicks until the operator accepts a
// fittable set of at least three points.
func (e *Engine) runCircPts(ctx context.Context) (domain.Stage, error) {
	collector := NewCollector(e.sess, TargetCircumference)
	for {
		e.refreshCircFit(ctx)
		e.present()

		ev, err := e.front.Input.Next(ctx)
		if err != nil {
			return e.sess.Stage, err
		}
		switch ev.Kind {
		case domain.InputClick:
			collector.AddPoint(ev.Point)
		case domain.InputUndo:
			collector.UndoLast()
		case domain.InputConfirm:
			if len(e.sess.CircPoints) < 3 {
				e.reject(domain.Validation(e.sess.Stage,
					"Need at least 3 points to fit the sphere outline (8 or more, spread widely, works best)."))
				continue
			}
			e.refreshCircFit(ctx)
			if e.sess.FitRadius <= 0 {
				e.reject(domain.Validation(e.sess.Stage,
					"The clicked points do not produce a valid circumference fit. Adjust them and try again."))
				continue
			}
			e.store.Add(domain.KeyCircRoi, geom.FlattenPoints(e.sess.CircPoints))
			if err := e.commit(ctx, domain.KeyCircRoi); err != nil {
				return e.sess.Stage, err
			}
			return domain.StageIgnrInit, nil
		case domain.InputCancel:
			return e.sess.Stage, domain.ErrCancelled
		}
	}
}

// enterIgnrInit offers to resume previously committed ignore regions. The
// prompt is shown whenever the key parses, even to an empty region list;
// polygons that parsed empty are dropped.
func (e *Engine) enterIgnrInit(ctx context.Context) (domain.Stage, error) {
	lists, found := StoredIntLists(e.store, domain.KeyIgnoreRoi)
	if !found {
		return domain.StageIgnrPts, nil
	}

	var regions []geom.Polygon
	for _, flat := range lists {
		if poly := geom.Polygon(geom.UnflattenPoints(flat)); len(poly) > 0 {
			regions = append(regions, poly)
		}
	}
	e.sess.IgnoreRegions = regions

	e.present()
	keep, err := e.front.Prompter.ConfirmKeep(ctx, "Use previously configured ignore regions?")
	if err != nil {
		return e.sess.Stage, err
	}
	if keep {
		return domain.StageRInit, nil
	}
	e.sess.IgnoreRegions = nil
	return domain.StageIgnrPts, nil
}

// runIgnrPts collects ignore polygons. Confirm closes the polygon being
// drawn; confirming with no open polygon ends the stage, so an operator who
// wants no regions at all just confirms once.
func (e *Engine) runIgnrPts(ctx context.Context) (domain.Stage, error) {
	collector := NewCollector(e.sess, TargetIgnoreRegions)
	for {
		e.present()

		ev, err := e.front.Input.Next(ctx)
		if err != nil {
			return e.sess.Stage, err
		}
		switch ev.Kind {
		case domain.InputClick:
			collector.AddPoint(ev.Point)
		case domain.InputUndo:
			collector.UndoLast()
		case domain.InputConfirm:
			if len(e.sess.ActivePolygon()) > 0 {
				collector.StartNewPolygon()
				continue
			}
			collector.DropTrailingEmptyPolygon()
			lists := make([][]int, 0, len(e.sess.IgnoreRegions))
			for _, poly := range e.sess.IgnoreRegions {
				lists = append(lists, geom.FlattenPoints(poly))
			}
			e.store.Add(domain.KeyIgnoreRoi, lists)
			if err := e.commit(ctx, domain.KeyIgnoreRoi); err != nil {
				return e.sess.Stage, err
			}
			return domain.StageRInit, nil
		case domain.InputCancel:
			return e.sess.Stage, domain.ErrCancelled
		}
	}
}

// enterRInit offers to resume a previously committed transform. Resume needs
// the method tag, its corner set and both pose vectors to parse; an external
// transform has no corners to redraw, so it always re-prompts.
func (e *Engine) enterRInit(ctx context.Context) (domain.Stage, error) {
	src, found := StoredString(e.store, domain.KeyTransform)
	if !found {
		return domain.StageRSlct, nil
	}
	method := domain.Method(src)
	cornersKey := method.CornersKey()
	if !method.Valid() || cornersKey == "" {
		return domain.StageRSlct, nil
	}

	flat, cornersOK := StoredInts(e.store, cornersKey)
	r, rOK := StoredFloats(e.store, domain.KeyRotation, 3)
	t, tOK := StoredFloats(e.store, domain.KeyTranslation, 3)
	if !cornersOK || len(flat) != 8 || !rOK || !tOK {
		return domain.StageRSlct, nil
	}

	e.sess.Method = method
	e.sess.SquareCorners = geom.UnflattenPoints(flat)
	e.sess.Transform = geom.Pose{
		R: geom.FromAxisAngle(r3.Vector{X: r[0], Y: r[1], Z: r[2]}),
		T: r3.Vector{X: t[0], Y: t[1], Z: t[2]},
	}
	e.sess.HasTransform = true

	e.present()
	keep, err := e.front.Prompter.ConfirmKeep(ctx, "Use previously configured camera-to-subject transform?")
	if err != nil {
		return e.sess.Stage, err
	}
	if keep {
		return domain.StageExit, nil
	}
	e.sess.Method = ""
	e.sess.SquareCorners = nil
	e.sess.Transform = geom.Pose{}
	e.sess.HasTransform = false
	return domain.StageRSlct, nil
}

// runRSlct asks the operator how the transform should be defined and routes
// to the matching collection stage. Unknown choices re-prompt.
func (e *Engine) runRSlct(ctx context.Context) (domain.Stage, error) {
	for {
		e.present()
		choice, err := e.front.Prompter.SelectMethod(ctx)
		if err != nil {
			return e.sess.Stage, err
		}
		method, ok := domain.MethodForChoice(choice)
		if !ok {
			e.reject(domain.Validation(e.sess.Stage, "Unsupported choice %d. Please try again.", choice))
			continue
		}
		e.sess.Method = method
		e.sess.SquareCorners = nil
		e.sess.Transform = geom.Pose{}
		e.sess.HasTransform = false
		return method.Stage(), nil
	}
}

// poseGuess seeds the pose fitter: the current estimate when one exists
// (so a handedness flip re-minimizes in the flipped basin), otherwise a
// neutral pose one unit in front of the camera.
func (e *Engine) poseGuess() geom.Pose {
	if e.sess.HasTransform {
		return e.sess.Transform
	}
	return geom.Pose{R: geom.Identity(), T: r3.Vector{Z: 1}}
}

// runCornerStage collects the four corners of the chosen reference square,
// estimating the pose as soon as the fourth corner lands. Extra clicks are
// dropped; flip negates the estimate's third column and re-fits from there.
func (e *Engine) runCornerStage(ctx context.Context) (domain.Stage, error) {
	collector := NewCollector(e.sess, TargetCorners)
	for {
		e.present()

		ev, err := e.front.Input.Next(ctx)
		if err != nil {
			return e.sess.Stage, err
		}
		switch ev.Kind {
		case domain.InputClick:
			if len(e.sess.SquareCorners) >= 4 {
				continue
			}
			collector.AddPoint(ev.Point)
			if len(e.sess.SquareCorners) == 4 {
				e.recomputePose(ctx, e.poseGuess())
			}
		case domain.InputUndo:
			collector.UndoLast()
			e.sess.HasTransform = false
		case domain.InputFlip:
			if e.sess.HasTransform {
				flipped := e.sess.Transform
				flipped.R = flipped.R.NegateColumn(2)
				e.recomputePose(ctx, flipped)
			}
		case domain.InputConfirm:
			if len(e.sess.SquareCorners) != 4 || !e.sess.HasTransform {
				e.reject(domain.Validation(e.sess.Stage,
					"Click all 4 corners of the square before accepting."))
				continue
			}
			axisAngle := e.sess.Transform.R.ToAxisAngle()
			cornersKey := e.sess.Method.CornersKey()
			e.store.Add(cornersKey, geom.FlattenPoints(e.sess.SquareCorners))
			e.store.Add(domain.KeyRotation, []float64{axisAngle.X, axisAngle.Y, axisAngle.Z})
			e.store.Add(domain.KeyTranslation, []float64{
				e.sess.Transform.T.X, e.sess.Transform.T.Y, e.sess.Transform.T.Z,
			})
			e.store.Add(domain.KeyTransform, string(e.sess.Method))
			keys := []string{cornersKey, domain.KeyRotation, domain.KeyTranslation, domain.KeyTransform}
			if err := e.commit(ctx, keys...); err != nil {
				return e.sess.Stage, err
			}
			return domain.StageExit, nil
		case domain.InputCancel:
			return e.sess.Stage, domain.ErrCancelled
		}
	}
}

// enterRExt records that the transform is supplied externally. Existing pose
// values stay untouched; a missing rotation is defaulted so downstream
// consumers always find one.
func (e *Engine) enterRExt(ctx context.Context) (domain.Stage, error) {
	keys := []string{domain.KeyTransform}
	if _, found := StoredFloats(e.store, domain.KeyRotation, 3); !found {
		e.store.Add(domain.KeyRotation, []float64{0, 0, 0})
		keys = append(keys, domain.KeyRotation)
	}
	e.store.Add(domain.KeyTransform, string(domain.MethodExternal))
	if err := e.commit(ctx, keys...); err != nil {
		return e.sess.Stage, err
	}
	return domain.StageExit, nil
}
