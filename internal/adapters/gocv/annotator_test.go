package gocv_test

import (
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	adapter "github.com/aretw0/spherecal/internal/adapters/gocv"
	"github.com/aretw0/spherecal/internal/testutils"
	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/geom"
)

func writeTestImage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "frame.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, testutils.GrayFrame(64, 48)))
	require.NoError(t, f.Close())
	return path
}

func TestOpen_StillImageSource(t *testing.T) {
	src, err := adapter.Open(writeTestImage(t))
	require.NoError(t, err)
	defer src.Close()

	frame, err := src.Grab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 64, 48), frame.Bounds())

	_, ok := frame.(*image.Gray)
	assert.True(t, ok, "still sources should deliver grayscale frames")

	// Still images can be grabbed repeatedly.
	_, err = src.Grab(context.Background())
	assert.NoError(t, err)
}

func TestOpen_UnreadableSourceIsAStartupError(t *testing.T) {
	_, err := adapter.Open(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not interpret source")
}

func TestGrab_HonoursCancelledContext(t *testing.T) {
	src, err := adapter.Open(writeTestImage(t))
	require.NoError(t, err)
	defer src.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Grab(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRasterize_DrawsOverlaysOnAColourCopy(t *testing.T) {
	frame := testutils.GrayFrame(100, 80)
	model := domain.DisplayModel{
		Markers: []domain.Marker{
			{Point: geom.Pt(50, 40), PaletteIndex: 0, Radius: 5},
		},
		Polylines: []domain.Polyline{
			{Role: domain.RoleSquare, Points: []geom.Point2D{
				geom.Pt(10, 10), geom.Pt(30, 10), geom.Pt(30, 30), geom.Pt(10, 30),
			}, Closed: true},
		},
	}

	out, err := adapter.NewAnnotator().Rasterize(frame, model)
	require.NoError(t, err)
	assert.Equal(t, frame.Bounds(), out.Bounds())

	// The marker circle is palette colour 0 (red).
	r, g, _, _ := out.At(55, 40).RGBA()
	assert.Greater(t, r, g, "marker outline should be red")

	// The square edge is green.
	r, g, _, _ = out.At(20, 10).RGBA()
	assert.Greater(t, g, r, "square edge should be green")

	// The backdrop stays untouched away from overlays.
	r, g, b, _ := out.At(80, 70).RGBA()
	assert.Equal(t, r, g)
	assert.Equal(t, g, b)
}

func TestWriteSnapshot_PersistsAnnotatedFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rig-configImg.png")
	model := domain.DisplayModel{
		Markers: []domain.Marker{{Point: geom.Pt(10, 10), Radius: 5}},
	}

	err := adapter.NewAnnotator().WriteSnapshot(testutils.GrayFrame(64, 48), model, path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}
