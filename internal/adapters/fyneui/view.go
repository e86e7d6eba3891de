package fyneui

import (
	"image"
	"image/color"
	"sync"

	"fyne.io/fyne/v2"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"github.com/aretw0/spherecal/pkg/domain"
)

// Zoom inset geometry: a zoomDim*zoomScale square of frame pixels around the
// cursor is magnified into a zoomDim-sided box in the top-right corner.
const (
	zoomDim   = 600
	zoomScale = 1.0 / 10.0
)

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

// overlayView renders the frame plus the current display model and turns
// pointer and key activity into wizard events.
type overlayView struct {
	widget.BaseWidget

	emit   func(domain.InputEvent)
	raster *fynecanvas.Raster

	mu     sync.Mutex
	frame  image.Image
	model  domain.DisplayModel
	cursor *fyne.Position // view-space cursor, nil while the pointer is outside
}

var (
	_ fyne.Tappable     = (*overlayView)(nil)
	_ desktop.Hoverable = (*overlayView)(nil)
)

func newOverlayView(emit func(domain.InputEvent)) *overlayView {
	v := &overlayView{emit: emit}
	v.raster = fynecanvas.NewRaster(v.draw)
	v.raster.ScaleMode = fynecanvas.ImageScalePixels
	v.raster.SetMinSize(fyne.NewSize(400, 300))
	v.ExtendBaseWidget(v)
	return v
}

func (v *overlayView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// SetFrame installs the session backdrop. It is called once, before the first
// wizard cycle.
func (v *overlayView) SetFrame(frame image.Image) {
	v.mu.Lock()
	v.frame = frame
	v.mu.Unlock()

	b := frame.Bounds()
	v.raster.SetMinSize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())))
	v.raster.Refresh()
}

// SetModel replaces the drawn overlay.
func (v *overlayView) SetModel(model domain.DisplayModel) {
	v.mu.Lock()
	v.model = model
	v.mu.Unlock()
	v.raster.Refresh()
}

// Tapped converts a click into frame coordinates and forwards it.
func (v *overlayView) Tapped(ev *fyne.PointEvent) {
	v.mu.Lock()
	frame := v.frame
	v.mu.Unlock()
	if frame == nil {
		return
	}

	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	b := frame.Bounds()
	x := float64(ev.Position.X) / float64(size.Width) * float64(b.Dx())
	y := float64(ev.Position.Y) / float64(size.Height) * float64(b.Dy())
	v.emit(domain.Click(x, y))
}

func (v *overlayView) MouseIn(ev *desktop.MouseEvent) {
	v.setCursor(ev.Position)
}

func (v *overlayView) MouseMoved(ev *desktop.MouseEvent) {
	v.setCursor(ev.Position)
}

func (v *overlayView) MouseOut() {
	v.mu.Lock()
	v.cursor = nil
	v.mu.Unlock()
	v.raster.Refresh()
}

func (v *overlayView) setCursor(pos fyne.Position) {
	v.mu.Lock()
	v.cursor = &pos
	v.mu.Unlock()
	v.raster.Refresh()
}

// draw renders one view frame at the requested pixel size.
func (v *overlayView) draw(w, h int) image.Image {
	v.mu.Lock()
	frame := v.frame
	model := v.model
	cursor := v.cursor
	v.mu.Unlock()

	out := image.NewRGBA(image.Rect(0, 0, w, h))
	if frame == nil || w == 0 || h == 0 {
		return out
	}

	b := frame.Bounds()
	xdraw.NearestNeighbor.Scale(out, out.Bounds(), frame, b, xdraw.Src, nil)

	// Frame pixels to view pixels, per axis.
	sx := float64(w) / float64(b.Dx())
	sy := float64(h) / float64(b.Dy())

	ignr := 0
	for _, line := range model.Polylines {
		c := roleColor(line.Role)
		if line.Role == domain.RoleIgnoreRegion {
			c = palette[ignr%len(palette)]
			ignr++
		}
		n := len(line.Points)
		for i := 0; i+1 < n; i++ {
			drawLine(out,
				int(line.Points[i].X*sx), int(line.Points[i].Y*sy),
				int(line.Points[i+1].X*sx), int(line.Points[i+1].Y*sy), c)
		}
		if line.Closed && n > 2 {
			drawLine(out,
				int(line.Points[n-1].X*sx), int(line.Points[n-1].Y*sy),
				int(line.Points[0].X*sx), int(line.Points[0].Y*sy), c)
		}
	}

	for _, m := range model.Markers {
		drawCircle(out,
			int(m.Point.X*sx), int(m.Point.Y*sy),
			int(m.Radius*sx), palette[m.PaletteIndex%len(palette)])
	}

	if cursor != nil {
		v.drawInset(out, frame, *cursor, w)
	}

	return out
}

// drawInset magnifies the frame region around the cursor into the top-right
// corner of the view.
func (v *overlayView) drawInset(out *image.RGBA, frame image.Image, cursor fyne.Position, w int) {
	size := v.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return
	}
	b := frame.Bounds()

	// Cursor in frame coordinates.
	cx := float64(cursor.X) / float64(size.Width) * float64(b.Dx())
	cy := float64(cursor.Y) / float64(size.Height) * float64(b.Dy())

	side := zoomDim
	if max := w / 3; side > max {
		side = max
	}
	if side < 40 {
		return
	}
	crop := int(float64(side)*zoomScale + 0.5)

	x0 := clamp(int(cx)-crop/2, b.Min.X, b.Max.X-crop)
	y0 := clamp(int(cy)-crop/2, b.Min.Y, b.Max.Y-crop)
	src := image.Rect(x0, y0, x0+crop, y0+crop)

	dst := image.Rect(w-side-8, 8, w-8, 8+side)
	xdraw.NearestNeighbor.Scale(out, dst, frame, src, xdraw.Src, nil)

	border := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	drawLine(out, dst.Min.X, dst.Min.Y, dst.Max.X-1, dst.Min.Y, border)
	drawLine(out, dst.Max.X-1, dst.Min.Y, dst.Max.X-1, dst.Max.Y-1, border)
	drawLine(out, dst.Max.X-1, dst.Max.Y-1, dst.Min.X, dst.Max.Y-1, border)
	drawLine(out, dst.Min.X, dst.Max.Y-1, dst.Min.X, dst.Min.Y, border)
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// drawLine draws a 1px Bresenham segment.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	for {
		setPixel(img, x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawCircle draws a 1px midpoint circle outline.
func drawCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	if r <= 0 {
		setPixel(img, cx, cy, c)
		return
	}
	x, y := r, 0
	err := 1 - r
	for x >= y {
		setPixel(img, cx+x, cy+y, c)
		setPixel(img, cx+y, cy+x, c)
		setPixel(img, cx-y, cy+x, c)
		setPixel(img, cx-x, cy+y, c)
		setPixel(img, cx-x, cy-y, c)
		setPixel(img, cx-y, cy-x, c)
		setPixel(img, cx+y, cy-x, c)
		setPixel(img, cx+x, cy-y, c)
		y++
		if err < 0 {
			err += 2*y + 1
		} else {
			x--
			err += 2*(y-x) + 1
		}
	}
}

func setPixel(img *image.RGBA, x, y int, c color.RGBA) {
	if image.Pt(x, y).In(img.Bounds()) {
		img.SetRGBA(x, y, c)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
