/*
Package spherecal is an interactive calibration wizard for camera-and-sphere
tracking rigs. It walks an operator through marking the sphere's visible
circumference, outlining regions the tracker must ignore, and recovering the
camera-to-subject rigid transform from the corners of a reference square.

It implements a "Resumable Staged Wizard" architecture: every completed stage
commits its artifact to the config store before the next stage starts, so an
interrupted session resumes by offering to keep or redo each stored artifact
in turn.

# Concept

spherecal treats the calibration as a small state machine over stages. The
engine owns the stage transitions, the click collection and the commit
discipline, while the host application ("frontend") owns all I/O: grabbing
frames, collecting clicks and keys, drawing overlays, and asking keep/discard
questions. This Hexagonal Architecture means the same core drives a desktop
window, an HTTP remote surface, or a fully scripted test.

# Key Features

  - Stop & Resume: each stage's artifact is durably committed on its own; an
    interrupted session never loses finished work.
  - Hexagonal Architecture: stores, camera models, fitters and frontends are
    injected ports with bundled default implementations.
  - Batch-atomic commits: a commit flushes the whole config document in one
    write, preserving keys the wizard does not own.
  - Chirality control: the operator can flip the handedness of a fitted
    transform before accepting it.

# Usage

Assemble a Wizard from a config store, a camera model and a frontend, then
Run it:

	store := file.New("config.yml")
	cam := camera.NewRectilinear(640, 480, 45*math.Pi/180)

	wiz, err := spherecal.New(store, cam, spherecal.Frontend{
		Frames:   frames,
		Input:    input,
		Renderer: renderer,
		Prompter: prompter,
	})
	if err != nil {
		log.Fatal(err)
	}

	res := wiz.Run(context.Background())
	if !res.Succeeded() {
		log.Fatalf("calibration ended in %s: %v", res.Outcome, res.Err)
	}

The cmd/spherecal CLI wires the bundled adapters: a YAML file or Redis config
store, the gocv frame source, the fyne click window and the terminal
prompter.
*/
package spherecal
