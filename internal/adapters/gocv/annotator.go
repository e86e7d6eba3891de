package gocv

import (
	"fmt"
	"image"
	"image/color"

	backend "gocv.io/x/gocv"

	"github.com/aretw0/spherecal/pkg/domain"
)

// Annotator burns display overlays into frame copies and writes the final
// snapshot image.
type Annotator struct{}

// NewAnnotator creates an OpenCV-backed annotator.
func NewAnnotator() *Annotator {
	return &Annotator{}
}

// palette is the six point colours the calibration display cycles through.
var palette = [domain.PaletteSize]color.RGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
	{G: 255, B: 255, A: 255},
	{R: 255, B: 255, A: 255},
}

func roleColor(role domain.Role) color.RGBA {
	switch role {
	case domain.RoleCircumference:
		return color.RGBA{R: 255, A: 255}
	case domain.RoleSquare, domain.RoleAxisY:
		return color.RGBA{G: 255, A: 255}
	case domain.RoleAxisX:
		return color.RGBA{R: 255, A: 255}
	case domain.RoleAxisZ:
		return color.RGBA{B: 255, A: 255}
	default:
		return color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
}

// Rasterize draws model onto a colour copy of frame.
func (a *Annotator) Rasterize(frame image.Image, model domain.DisplayModel) (image.Image, error) {
	mat, err := render(frame, model)
	if err != nil {
		return nil, err
	}
	defer mat.Close()
	return mat.ToImage()
}

// WriteSnapshot rasterises model over frame and writes the result to path.
func (a *Annotator) WriteSnapshot(frame image.Image, model domain.DisplayModel, path string) error {
	mat, err := render(frame, model)
	if err != nil {
		return err
	}
	defer mat.Close()
	if !backend.IMWrite(path, mat) {
		return fmt.Errorf("failed to write snapshot %s", path)
	}
	return nil
}

func render(frame image.Image, model domain.DisplayModel) (backend.Mat, error) {
	mat, err := backend.ImageToMatRGB(frame)
	if err != nil {
		return backend.Mat{}, fmt.Errorf("convert frame: %w", err)
	}

	// Ignore regions cycle the palette per polygon, matching the marker
	// colours their clicks were drawn with.
	ignr := 0
	for _, line := range model.Polylines {
		c := roleColor(line.Role)
		if line.Role == domain.RoleIgnoreRegion {
			c = palette[ignr%len(palette)]
			ignr++
		}
		drawPolyline(&mat, line, c)
	}

	for _, m := range model.Markers {
		center := image.Pt(m.Point.RoundX(), m.Point.RoundY())
		backend.Circle(&mat, center, int(m.Radius), palette[m.PaletteIndex%len(palette)], 1)
	}

	return mat, nil
}

func drawPolyline(mat *backend.Mat, line domain.Polyline, c color.RGBA) {
	n := len(line.Points)
	if n < 2 {
		return
	}
	for i := 0; i+1 < n; i++ {
		backend.Line(mat,
			image.Pt(line.Points[i].RoundX(), line.Points[i].RoundY()),
			image.Pt(line.Points[i+1].RoundX(), line.Points[i+1].RoundY()),
			c, 1)
	}
	if line.Closed && n > 2 {
		backend.Line(mat,
			image.Pt(line.Points[n-1].RoundX(), line.Points[n-1].RoundY()),
			image.Pt(line.Points[0].RoundX(), line.Points[0].RoundY()),
			c, 1)
	}
}
