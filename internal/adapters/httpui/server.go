// Package httpui exposes the wizard to headless rigs over HTTP: live status
// and preview, operator events, and the keep/discard and method prompts. It
// implements the same frontend ports as the interactive window.
package httpui

import (
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/ports"
)

type promptKind string

const (
	promptNone    promptKind = "none"
	promptConfirm promptKind = "confirm"
	promptMethod  promptKind = "method"
)

const methodPrompt = "Choose the transform source: 1=X-Y square corners, " +
	"2=Y-Z square corners, 3=X-Z square corners, 5=external transform (4 is reserved)"

type promptAnswer struct {
	keep   bool
	choice int
}

// Frontend implements the wizard's renderer, input and prompter ports over
// HTTP. One wizard session is served at a time.
type Frontend struct {
	raster ports.Rasterizer
	logger *slog.Logger

	events  chan domain.InputEvent
	answers chan promptAnswer

	mu      sync.Mutex
	frame   image.Image
	model   domain.DisplayModel
	pending promptKind
	prompt  string
}

// Option configures the frontend.
type Option func(*Frontend)

// WithRasterizer sets the rasterizer backing GET /preview.png. Without one
// the preview serves the bare frame.
func WithRasterizer(r ports.Rasterizer) Option {
	return func(f *Frontend) {
		f.raster = r
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Frontend) {
		f.logger = logger
	}
}

// New creates the HTTP frontend.
func New(opts ...Option) *Frontend {
	f := &Frontend{
		logger:  slog.New(slog.NewJSONHandler(io.Discard, nil)),
		events:  make(chan domain.InputEvent, 16),
		answers: make(chan promptAnswer, 1),
		pending: promptNone,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Begin stores the session backdrop.
func (f *Frontend) Begin(frame image.Image) error {
	f.mu.Lock()
	f.frame = frame
	f.mu.Unlock()
	return nil
}

// Present replaces the overlay model served by /status and /preview.png.
func (f *Frontend) Present(model domain.DisplayModel) {
	f.mu.Lock()
	f.model = model
	f.mu.Unlock()
}

// Next delivers the next POSTed operator event.
func (f *Frontend) Next(ctx context.Context) (domain.InputEvent, error) {
	select {
	case <-ctx.Done():
		return domain.InputEvent{}, ctx.Err()
	case ev := <-f.events:
		return ev, nil
	}
}

// ConfirmKeep publishes a keep/discard prompt and blocks until a client
// answers it.
func (f *Frontend) ConfirmKeep(ctx context.Context, prompt string) (bool, error) {
	a, err := f.await(ctx, promptConfirm, prompt)
	if err != nil {
		return false, err
	}
	return a.keep, nil
}

// SelectMethod publishes the method menu and blocks until a client answers.
// Out-of-range choices are passed through for the wizard to validate.
func (f *Frontend) SelectMethod(ctx context.Context) (int, error) {
	a, err := f.await(ctx, promptMethod, methodPrompt)
	if err != nil {
		return 0, err
	}
	return a.choice, nil
}

func (f *Frontend) await(ctx context.Context, kind promptKind, text string) (promptAnswer, error) {
	f.mu.Lock()
	// Drop any answer left over from a prompt that was cancelled mid-flight.
	select {
	case <-f.answers:
	default:
	}
	f.pending, f.prompt = kind, text
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.pending, f.prompt = promptNone, ""
		f.mu.Unlock()
	}()

	select {
	case <-ctx.Done():
		return promptAnswer{}, ctx.Err()
	case a := <-f.answers:
		return a, nil
	}
}

// Handler returns the chi router serving the frontend API.
func (f *Frontend) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/health", f.getHealth)
	r.Get("/status", f.getStatus)
	r.Get("/preview.png", f.getPreview)
	r.Post("/event", f.postEvent)
	r.Get("/prompt", f.getPrompt)
	r.Post("/prompt", f.postPrompt)
	r.Handle("/metrics", promhttp.Handler())
	return enableCORS(r)
}

// ListenAndServe serves the frontend on addr until ctx ends, then shuts the
// server down gracefully.
func (f *Frontend) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: f.Handler()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	f.logger.Info("remote frontend listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *Frontend) getHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, f.logger, map[string]string{"status": "ok"})
}

func (f *Frontend) getStatus(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	resp := map[string]any{
		"stage":          string(f.model.Stage),
		"terminal":       f.model.Stage.Terminal(),
		"instruction":    f.model.Instruction,
		"notice":         f.model.Notice,
		"markers":        len(f.model.Markers),
		"polylines":      len(f.model.Polylines),
		"prompt_pending": string(f.pending),
	}
	f.mu.Unlock()
	writeJSON(w, f.logger, resp)
}

func (f *Frontend) getPreview(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	frame := f.frame
	model := f.model
	f.mu.Unlock()

	if frame == nil {
		http.Error(w, "No frame grabbed yet", http.StatusNotFound)
		return
	}

	out := frame
	if f.raster != nil {
		annotated, err := f.raster.Rasterize(frame, model)
		if err != nil {
			http.Error(w, "Preview rendering failed", http.StatusInternalServerError)
			f.logger.Error("preview rasterize failed", "err", err)
			return
		}
		out = annotated
	}

	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, out); err != nil {
		f.logger.Error("preview encode failed", "err", err)
	}
}

func (f *Frontend) postEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Kind string  `json:"kind"`
		X    float64 `json:"x"`
		Y    float64 `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		f.logger.Warn("event: invalid request body", "err", err)
		return
	}

	var ev domain.InputEvent
	switch domain.InputKind(body.Kind) {
	case domain.InputClick:
		ev = domain.Click(body.X, body.Y)
	case domain.InputUndo, domain.InputConfirm, domain.InputCancel, domain.InputFlip:
		ev = domain.InputEvent{Kind: domain.InputKind(body.Kind)}
	default:
		http.Error(w, "Unknown event kind", http.StatusBadRequest)
		return
	}

	select {
	case f.events <- ev:
		w.WriteHeader(http.StatusAccepted)
		writeJSON(w, f.logger, map[string]string{"status": "queued"})
	default:
		http.Error(w, "Event queue full", http.StatusTooManyRequests)
	}
}

func (f *Frontend) getPrompt(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	resp := map[string]string{
		"type": string(f.pending),
		"text": f.prompt,
	}
	f.mu.Unlock()
	writeJSON(w, f.logger, resp)
}

func (f *Frontend) postPrompt(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Keep   *bool `json:"keep"`
		Choice *int  `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		f.logger.Warn("prompt: invalid request body", "err", err)
		return
	}

	f.mu.Lock()
	kind := f.pending
	f.mu.Unlock()

	var a promptAnswer
	switch {
	case kind == promptNone:
		http.Error(w, "No prompt pending", http.StatusConflict)
		return
	case kind == promptConfirm && body.Keep != nil:
		a = promptAnswer{keep: *body.Keep}
	case kind == promptMethod && body.Choice != nil:
		a = promptAnswer{choice: *body.Choice}
	default:
		http.Error(w, "Answer does not match the pending prompt", http.StatusBadRequest)
		return
	}

	select {
	case f.answers <- a:
	default:
		http.Error(w, "Prompt already answered", http.StatusConflict)
		return
	}

	f.mu.Lock()
	f.pending, f.prompt = promptNone, ""
	f.mu.Unlock()

	w.WriteHeader(http.StatusAccepted)
	writeJSON(w, f.logger, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("response encode failed", "err", err)
	}
}
