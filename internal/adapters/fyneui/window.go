// Package fyneui implements the interactive calibration window: the captured
// frame with live overlays, click collection, keyboard shortcuts and a
// magnified inset that follows the cursor.
package fyneui

import (
	"context"
	"errors"
	"image"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/aretw0/spherecal/pkg/domain"
)

// Window is the fyne frontend. It implements both the input source and the
// renderer port: clicks and shortcut keys become wizard events, and each
// wizard cycle replaces the drawn overlay.
type Window struct {
	app    fyne.App
	win    fyne.Window
	view   *overlayView
	status *widget.Label
	events chan domain.InputEvent
}

// New creates the calibration window. ShowAndRun must be called on the main
// goroutine; the wizard loop runs alongside it.
func New(title string) *Window {
	a := fyneapp.New()
	w := &Window{
		app:    a,
		win:    a.NewWindow(title),
		status: widget.NewLabel(""),
		events: make(chan domain.InputEvent, 16),
	}
	w.view = newOverlayView(w.emit)
	w.status.Wrapping = fyne.TextWrapWord

	w.win.SetContent(container.NewBorder(nil, w.status, nil, nil, w.view))
	w.win.Canvas().SetOnTypedKey(w.typedKey)
	w.win.Canvas().SetOnTypedRune(w.typedRune)
	w.win.SetCloseIntercept(func() {
		w.emit(domain.InputEvent{Kind: domain.InputCancel})
	})
	return w
}

// ShowAndRun enters the fyne main loop and blocks until Quit is called.
func (w *Window) ShowAndRun() {
	w.win.Show()
	w.app.Run()
}

// Quit stops the fyne main loop.
func (w *Window) Quit() {
	w.app.Quit()
}

// Begin hands the view its backdrop frame and sizes the window to match.
func (w *Window) Begin(frame image.Image) error {
	w.view.SetFrame(frame)
	b := frame.Bounds()
	w.win.Resize(fyne.NewSize(float32(b.Dx()), float32(b.Dy())+80))
	return nil
}

// Present replaces the drawn overlay with the current wizard cycle's model.
func (w *Window) Present(model domain.DisplayModel) {
	text := model.Instruction
	if model.Notice != "" {
		text = model.Notice + "\n" + text
	}
	w.status.SetText(text)
	w.view.SetModel(model)
}

// Next delivers the next operator event.
func (w *Window) Next(ctx context.Context) (domain.InputEvent, error) {
	select {
	case <-ctx.Done():
		return domain.InputEvent{}, ctx.Err()
	case ev, ok := <-w.events:
		if !ok {
			return domain.InputEvent{}, errors.New("input window closed")
		}
		return ev, nil
	}
}

// emit queues an event for the wizard. Events beyond the channel capacity are
// dropped; the operator can simply click again.
func (w *Window) emit(ev domain.InputEvent) {
	select {
	case w.events <- ev:
	default:
	}
}

func (w *Window) typedKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyReturn, fyne.KeyEnter:
		w.emit(domain.InputEvent{Kind: domain.InputConfirm})
	case fyne.KeyBackspace, fyne.KeyDelete:
		w.emit(domain.InputEvent{Kind: domain.InputUndo})
	case fyne.KeyEscape:
		w.emit(domain.InputEvent{Kind: domain.InputCancel})
	}
}

func (w *Window) typedRune(r rune) {
	switch r {
	case 'f', 'F':
		w.emit(domain.InputEvent{Kind: domain.InputFlip})
	case 'q', 'Q':
		w.emit(domain.InputEvent{Kind: domain.InputCancel})
	}
}
