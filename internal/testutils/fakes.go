package testutils

import (
	"context"
	"errors"
	"image"

	"github.com/golang/geo/r3"

	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
	"github.com/aretw0/spherecal/pkg/ports"
)

// ScriptedInput replays a fixed sequence of operator events. Exhausting the
// script is a test bug and fails loudly instead of hanging.
type ScriptedInput struct {
	Events []domain.InputEvent
	next   int
}

func (s *ScriptedInput) Next(ctx context.Context) (domain.InputEvent, error) {
	if err := ctx.Err(); err != nil {
		return domain.InputEvent{}, err
	}
	if s.next >= len(s.Events) {
		return domain.InputEvent{}, errors.New("input script exhausted")
	}
	ev := s.Events[s.next]
	s.next++
	return ev, nil
}

// ScriptedPrompter replays confirm and menu answers, recording the prompts
// it was asked.
type ScriptedPrompter struct {
	Keeps   []bool
	Choices []int

	Prompts []string

	keepIdx   int
	choiceIdx int
}

func (p *ScriptedPrompter) ConfirmKeep(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	p.Prompts = append(p.Prompts, prompt)
	if p.keepIdx >= len(p.Keeps) {
		return false, errors.New("confirm script exhausted")
	}
	keep := p.Keeps[p.keepIdx]
	p.keepIdx++
	return keep, nil
}

func (p *ScriptedPrompter) SelectMethod(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if p.choiceIdx >= len(p.Choices) {
		return 0, errors.New("choice script exhausted")
	}
	choice := p.Choices[p.choiceIdx]
	p.choiceIdx++
	return choice, nil
}

// StubCircumferenceFitter returns a fixed fit and counts invocations.
type StubCircumferenceFitter struct {
	Axis   r3.Vector
	Radius float64
	Err    error
	Calls  int
}

func (f *StubCircumferenceFitter) FitCircumference(ctx context.Context, points []geom.Point2D, cam ports.CameraModel) (r3.Vector, float64, error) {
	f.Calls++
	if f.Err != nil {
		return r3.Vector{}, 0, f.Err
	}
	return f.Axis, f.Radius, nil
}

// EchoPoseFitter returns the guess it is seeded with, recording every guess.
// Echoing makes flip semantics observable: the pose the wizard ends with is
// exactly the seed it chose.
type EchoPoseFitter struct {
	Guesses []geom.Pose
	Err     error
	Calls   int
}

func (f *EchoPoseFitter) EstimatePoseFromSquare(ctx context.Context, ref [4]r3.Vector, clicked []geom.Point2D, cam ports.CameraModel, guess geom.Pose) (geom.Pose, error) {
	f.Calls++
	f.Guesses = append(f.Guesses, guess)
	if f.Err != nil {
		return geom.Pose{}, f.Err
	}
	return guess, nil
}

// RecordingRenderer captures the backdrop frame and every presented model.
type RecordingRenderer struct {
	Frame  image.Image
	Models []domain.DisplayModel
}

func (r *RecordingRenderer) Begin(frame image.Image) error {
	r.Frame = frame
	return nil
}

func (r *RecordingRenderer) Present(model domain.DisplayModel) {
	r.Models = append(r.Models, model)
}

// Last returns the most recently presented model.
func (r *RecordingRenderer) Last() domain.DisplayModel {
	if len(r.Models) == 0 {
		return domain.DisplayModel{}
	}
	return r.Models[len(r.Models)-1]
}

// RecordingSnapshotter captures snapshot requests instead of writing files.
type RecordingSnapshotter struct {
	Paths  []string
	Models []domain.DisplayModel
	Err    error
}

func (s *RecordingSnapshotter) WriteSnapshot(frame image.Image, model domain.DisplayModel, path string) error {
	s.Paths = append(s.Paths, path)
	s.Models = append(s.Models, model)
	return s.Err
}

// StaticFrames serves one fixed frame.
type StaticFrames struct {
	Img    image.Image
	Err    error
	Closed bool
}

func (s *StaticFrames) Grab(ctx context.Context) (image.Image, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Img, nil
}

func (s *StaticFrames) Close() error {
	s.Closed = true
	return nil
}
