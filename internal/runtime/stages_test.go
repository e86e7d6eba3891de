package runtime_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/spherecal/pkg/adapters/memory"
	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
)

// resumeToCorners seeds circumference and ignore regions so a run reaches
// transform selection with only two keep answers.
func resumeToCorners() map[string]any {
	return map[string]any{
		"roi_circ": []int{100, 100, 300, 120, 200, 300},
		"roi_ignr": [][]int{},
	}
}

func TestCircumferenceStage_ConfirmRejectedUntilThreePoints(t *testing.T) {
	store := memory.NewStore()
	events := []domain.InputEvent{
		domain.Click(100, 100),
		confirm, // rejected: only one point
		domain.Click(300, 120),
		domain.Click(200, 300),
		confirm, // accepted
		cancel,  // end the run at ignore regions
	}
	f := newFixture(store, events, nil, nil)

	stage, err := f.engine.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, domain.StageIgnrPts, stage)

	assert.True(t, noticeShown(f.renderer.Models, "at least 3"),
		"operator should see why the confirm was refused")
	assert.Equal(t, []int{100, 100, 300, 120, 200, 300}, store.Document()["roi_circ"])
}

func TestCircumferenceStage_UnfittableSetRejected(t *testing.T) {
	store := memory.NewStore()
	events := append(threeClicks(), confirm, cancel)
	f := newFixture(store, events, nil, nil)
	f.circ.Err = assert.AnError

	stage, err := f.engine.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, domain.StageCircPts, stage)

	assert.True(t, noticeShown(f.renderer.Models, "valid circumference fit"))
	_, committed := store.Document()["roi_circ"]
	assert.False(t, committed)
}

func TestCircumferenceStage_UndoShrinksThePointSet(t *testing.T) {
	store := memory.NewStore()
	events := []domain.InputEvent{
		domain.Click(100, 100),
		domain.Click(300, 120),
		domain.Click(200, 300),
		domain.Click(50, 50),
		undo, // drop the stray fourth point
		confirm,
		cancel,
	}
	f := newFixture(store, events, nil, nil)

	_, err := f.engine.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, []int{100, 100, 300, 120, 200, 300}, store.Document()["roi_circ"])
}

func TestIgnoreStage_PolygonsCloseOnConfirm(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ": []int{100, 100, 300, 120, 200, 300},
	}))
	events := []domain.InputEvent{
		domain.Click(10, 10),
		domain.Click(40, 10),
		domain.Click(25, 40),
		confirm, // close first polygon
		domain.Click(400, 400),
		confirm, // close second (degenerate single-point) polygon
		confirm, // empty active polygon: finalize the stage
	}
	f := newFixture(store, events, []bool{true}, []int{5})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageExit, stage)

	assert.Equal(t, [][]int{
		{10, 10, 40, 10, 25, 40},
		{400, 400},
	}, store.Document()["roi_ignr"])
}

func TestIgnoreStage_ResumePromptShownEvenForEmptyList(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ": []int{100, 100, 300, 120, 200, 300},
		"roi_ignr": [][]int{},
	}))
	f := newFixture(store, nil, []bool{true, true}, []int{5})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageExit, stage)

	require.Len(t, f.prompter.Prompts, 2)
	assert.Contains(t, f.prompter.Prompts[1], "ignore")
}

func TestIgnoreStage_EmptyStoredPolygonsAreDropped(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ": []int{100, 100, 300, 120, 200, 300},
		"roi_ignr": [][]int{{}, {50, 50, 80, 50, 80, 90}, {}},
	}))
	f := newFixture(store, nil, []bool{true, true}, []int{5})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	sess := f.engine.Session()
	require.Len(t, sess.IgnoreRegions, 1)
	assert.Equal(t, geom.Polygon{
		geom.Pt(50, 50), geom.Pt(80, 50), geom.Pt(80, 90),
	}, sess.IgnoreRegions[0])
}

func TestIgnoreStage_ConfirmWithNoClicksPersistsZeroPolygons(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ": []int{100, 100, 300, 120, 200, 300},
	}))
	// The operator wants no ignore regions: confirm straight away, twice to
	// be sure. The first confirm already finalizes the stage.
	events := []domain.InputEvent{confirm, confirm}
	f := newFixture(store, events, []bool{true}, []int{5})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	assert.Equal(t, [][]int{}, store.Document()["roi_ignr"])
	assert.Empty(t, f.engine.Session().IgnoreRegions)
}

func TestResume_DecliningEveryKeepMatchesAnEmptyStore(t *testing.T) {
	collection := func() []domain.InputEvent {
		events := []domain.InputEvent{
			domain.Click(150, 150),
			domain.Click(350, 170),
			domain.Click(250, 350),
			confirm, // circumference
			confirm, // no ignore regions
			domain.Click(200, 150),
			domain.Click(400, 150),
			domain.Click(400, 350),
			domain.Click(200, 350),
			confirm, // corners
		}
		return events
	}

	// One run against a fully populated document, declining every keep
	// prompt; one against an empty document. Both must walk the same
	// collection flow and end with the same artifacts.
	seeded := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ":    []int{1, 1, 2, 2, 3, 3},
		"roi_ignr":    [][]int{{9, 9, 9, 19, 19, 19}},
		"c2a_src":     "c2a_cnrs_xy",
		"c2a_cnrs_xy": []int{5, 5, 6, 5, 6, 6, 5, 6},
		"c2a_r":       []float64{0.1, 0.2, 0.3},
		"c2a_t":       []float64{1, 2, 3},
	}))
	fSeeded := newFixture(seeded, collection(), []bool{false, false, false}, []int{1})

	stage, err := fSeeded.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	empty := memory.NewStore()
	fEmpty := newFixture(empty, collection(), nil, []int{1})

	stage, err = fEmpty.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	for _, key := range []string{"roi_circ", "roi_ignr", "c2a_src", "c2a_cnrs_xy", "c2a_r", "c2a_t"} {
		assert.Equal(t, empty.Document()[key], seeded.Document()[key], key)
	}
}

func TestMethodSelection_InvalidChoicesReprompt(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(resumeToCorners()))
	events := []domain.InputEvent{
		domain.Click(200, 150),
		domain.Click(400, 150),
		domain.Click(400, 350),
		domain.Click(200, 350),
		confirm,
	}
	// Choice 4 is reserved, 9 out of range; 2 selects the Y-Z square.
	f := newFixture(store, events, []bool{true, true}, []int{4, 9, 2})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageExit, stage)

	assert.True(t, noticeShown(f.renderer.Models, "choice 4"))
	assert.True(t, noticeShown(f.renderer.Models, "choice 9"))

	doc := store.Document()
	assert.Equal(t, "c2a_cnrs_yz", doc["c2a_src"])
	assert.Equal(t, []int{200, 150, 400, 150, 400, 350, 200, 350}, doc["c2a_cnrs_yz"])
}

func TestCornerStage_ExtraClicksBeyondFourAreDropped(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(resumeToCorners()))
	events := []domain.InputEvent{
		domain.Click(200, 150),
		domain.Click(400, 150),
		domain.Click(400, 350),
		domain.Click(200, 350),
		domain.Click(10, 10), // ignored
		domain.Click(20, 20), // ignored
		confirm,
	}
	f := newFixture(store, events, []bool{true, true}, []int{1})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StageExit, stage)

	assert.Equal(t, 1, f.pose.Calls, "pose fits only when the fourth corner lands")
	assert.Equal(t, []int{200, 150, 400, 150, 400, 350, 200, 350},
		store.Document()["c2a_cnrs_xy"])
}

func TestCornerStage_FlipReseedsFromNegatedColumn(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(resumeToCorners()))
	events := []domain.InputEvent{
		domain.Click(200, 150),
		domain.Click(400, 150),
		domain.Click(400, 350),
		domain.Click(200, 350),
		flip,
		confirm,
	}
	f := newFixture(store, events, []bool{true, true}, []int{1})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	require.Len(t, f.pose.Guesses, 2)
	assert.Equal(t, geom.Identity(), f.pose.Guesses[0].R)
	assert.Equal(t, geom.Identity().NegateColumn(2), f.pose.Guesses[1].R,
		"flip must re-seed the fit with the mirrored rotation")
}

func TestCornerStage_FlipBeforeFourCornersDoesNothing(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(resumeToCorners()))
	events := []domain.InputEvent{
		domain.Click(200, 150),
		flip, // no pose yet
		domain.Click(400, 150),
		domain.Click(400, 350),
		domain.Click(200, 350),
		confirm,
	}
	f := newFixture(store, events, []bool{true, true}, []int{1})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)
	assert.Equal(t, 1, f.pose.Calls)
}

func TestCornerStage_UndoInvalidatesPoseAndConfirmIsRefused(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(resumeToCorners()))
	events := []domain.InputEvent{
		domain.Click(200, 150),
		domain.Click(400, 150),
		domain.Click(400, 350),
		domain.Click(200, 350),
		undo,    // back to three corners, pose invalid
		confirm, // refused
		domain.Click(210, 340),
		confirm,
	}
	f := newFixture(store, events, []bool{true, true}, []int{1})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	assert.True(t, noticeShown(f.renderer.Models, "4 corners"))
	assert.Equal(t, 2, f.pose.Calls)
	assert.Equal(t, []int{200, 150, 400, 150, 400, 350, 210, 340},
		store.Document()["c2a_cnrs_xy"])
}

func TestCornerStage_FitFailureBlocksAccept(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(resumeToCorners()))
	events := []domain.InputEvent{
		domain.Click(200, 150),
		domain.Click(400, 150),
		domain.Click(400, 350),
		domain.Click(200, 350),
		confirm, // refused: the fit failed
		cancel,
	}
	f := newFixture(store, events, []bool{true, true}, []int{1})
	f.pose.Err = assert.AnError

	stage, err := f.engine.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrCancelled)
	assert.Equal(t, domain.StageRXY, stage)

	_, committed := store.Document()["c2a_cnrs_xy"]
	assert.False(t, committed)
}

func TestTransformResume_KeepShortCircuitsToExit(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ":    []int{100, 100, 300, 120, 200, 300},
		"roi_ignr":    [][]int{},
		"c2a_src":     "c2a_cnrs_xz",
		"c2a_cnrs_xz": []int{200, 150, 400, 150, 400, 350, 200, 350},
		"c2a_r":       []float64{0.1, 0.2, 0.3},
		"c2a_t":       []float64{1, 2, 3},
	}))
	f := newFixture(store, nil, []bool{true, true, true}, nil)

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	sess := f.engine.Session()
	assert.Equal(t, domain.MethodXZ, sess.Method)
	assert.True(t, sess.HasTransform)
	assert.InDelta(t, 1.0, sess.Transform.T.X, 1e-12)
	assert.Zero(t, f.pose.Calls)
}

func TestTransformResume_DiscardLeavesStaleCornersBehind(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ":    []int{100, 100, 300, 120, 200, 300},
		"roi_ignr":    [][]int{},
		"c2a_src":     "c2a_cnrs_xy",
		"c2a_cnrs_xy": []int{200, 150, 400, 150, 400, 350, 200, 350},
		"c2a_r":       []float64{0, 0, 0},
		"c2a_t":       []float64{0, 0, 1},
	}))
	f := newFixture(store, nil, []bool{true, true, false}, []int{5})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	doc := store.Document()
	assert.Equal(t, "ext", doc["c2a_src"])
	// The wizard only ever adds keys; the superseded corner set stays in the
	// document and is simply no longer referenced by c2a_src.
	assert.Equal(t, []int{200, 150, 400, 150, 400, 350, 200, 350}, doc["c2a_cnrs_xy"])
}

func TestTransformResume_ExternalSourceReprompts(t *testing.T) {
	store := memory.NewStore(memory.WithInitial(map[string]any{
		"roi_circ": []int{100, 100, 300, 120, 200, 300},
		"roi_ignr": [][]int{},
		"c2a_src":  "ext",
		"c2a_r":    []float64{0.5, 0, 0},
		"c2a_t":    []float64{0, 0, 2},
	}))
	f := newFixture(store, nil, []bool{true, true}, []int{5})

	stage, err := f.engine.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, domain.StageExit, stage)

	// Only circumference and ignore-region prompts: an external transform has
	// no corners to redraw, so it goes straight back to the menu.
	require.Len(t, f.prompter.Prompts, 2)
	// Re-choosing external must not clobber the existing rotation.
	assert.Equal(t, []float64{0.5, 0, 0}, store.Document()["c2a_r"])
}

func TestTransformResume_IncompleteArtifactsReprompt(t *testing.T) {
	cases := []struct {
		name string
		doc  map[string]any
	}{
		{"missing corners", map[string]any{
			"c2a_src": "c2a_cnrs_xy",
			"c2a_r":   []float64{0, 0, 0},
			"c2a_t":   []float64{0, 0, 1},
		}},
		{"short corner list", map[string]any{
			"c2a_src":     "c2a_cnrs_xy",
			"c2a_cnrs_xy": []int{200, 150, 400, 150, 400, 350},
			"c2a_r":       []float64{0, 0, 0},
			"c2a_t":       []float64{0, 0, 1},
		}},
		{"short rotation", map[string]any{
			"c2a_src":     "c2a_cnrs_xy",
			"c2a_cnrs_xy": []int{200, 150, 400, 150, 400, 350, 200, 350},
			"c2a_r":       []float64{0, 0},
			"c2a_t":       []float64{0, 0, 1},
		}},
		{"unknown method tag", map[string]any{
			"c2a_src": "c2a_cnrs_zz",
			"c2a_r":   []float64{0, 0, 0},
			"c2a_t":   []float64{0, 0, 1},
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := map[string]any{
				"roi_circ": []int{100, 100, 300, 120, 200, 300},
				"roi_ignr": [][]int{},
			}
			for k, v := range tc.doc {
				doc[k] = v
			}
			store := memory.NewStore(memory.WithInitial(doc))
			f := newFixture(store, nil, []bool{true, true}, []int{5})

			stage, err := f.engine.Run(context.Background())
			require.NoError(t, err)
			require.Equal(t, domain.StageExit, stage)

			// No transform resume prompt: straight to the method menu.
			require.Len(t, f.prompter.Prompts, 2)
			assert.Equal(t, "ext", store.Document()["c2a_src"])
		})
	}
}

func TestNoticeIsShownExactlyOnce(t *testing.T) {
	store := memory.NewStore()
	events := []domain.InputEvent{
		domain.Click(100, 100),
		confirm, // rejected, notice raised
		domain.Click(300, 120),
		domain.Click(200, 300),
		confirm,
		cancel,
	}
	f := newFixture(store, events, nil, nil)

	_, err := f.engine.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrCancelled)

	count := 0
	for _, m := range f.renderer.Models {
		if m.Notice != "" {
			count++
		}
	}
	assert.Equal(t, 1, count, "a notice belongs to a single display cycle")
}
