package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	backend "github.com/redis/go-redis/v9"
	"golang.org/x/term"

	"github.com/aretw0/spherecal"
	"github.com/aretw0/spherecal/internal/adapters/fyneui"
	"github.com/aretw0/spherecal/internal/adapters/gocv"
	"github.com/aretw0/spherecal/internal/adapters/httpui"
	"github.com/aretw0/spherecal/internal/adapters/terminal"
	"github.com/aretw0/spherecal/internal/metrics"
	"github.com/aretw0/spherecal/internal/presentation/tui"
	"github.com/aretw0/spherecal/internal/runtime"
	"github.com/aretw0/spherecal/pkg/adapters/file"
	"github.com/aretw0/spherecal/pkg/adapters/redis"
	"github.com/aretw0/spherecal/pkg/camera"
	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/ports"
)

// sessionLockTTL bounds how long a crashed session can keep a Redis-backed
// document locked.
const sessionLockTTL = time.Hour

// storeHandle bundles a config store with the identity and plumbing its
// backend needs.
type storeHandle struct {
	store  ports.ConfigStore
	key    string          // document identity, for messages and the session lock
	client *backend.Client // non-nil only for Redis
	close  func()
}

// openStore selects the config backend. A Redis address wins over a file
// path; the file store needs no teardown.
func openStore(opts RunOptions) storeHandle {
	if opts.RedisAddr != "" {
		client := backend.NewClient(&backend.Options{Addr: opts.RedisAddr})
		key := opts.RedisKey
		if key == "" {
			key = redis.DefaultKey
		}
		store := redis.NewFromClient(client, redis.WithKey(key))
		return storeHandle{
			store:  store,
			key:    key,
			client: client,
			close:  func() { _ = store.Close() },
		}
	}
	return storeHandle{
		store: file.New(opts.ConfigPath),
		key:   opts.ConfigPath,
		close: func() {},
	}
}

// RunSession executes a single calibration session.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	interactive := opts.Remote == ""
	if interactive && term.IsTerminal(int(os.Stdout.Fd())) {
		tui.PrintBanner(spherecal.Version)
	}

	// Setup signal handling
	// Use the unified SignalContext helper
	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	h := openStore(opts)
	defer h.close()

	// A Redis document is shared between machines, so a second wizard on the
	// same document must be refused while one is running. The file store
	// relies on its atomic rename instead.
	if h.client != nil {
		unlock, err := redis.NewLocker(h.client, "").TryLock(sigCtx, h.key, sessionLockTTL)
		if err != nil {
			if errors.Is(err, redis.ErrLockHeld) {
				return fmt.Errorf("config '%s': %w", h.key, err)
			}
			return fmt.Errorf("acquiring session lock: %w", err)
		}
		defer func() {
			if err := unlock(context.Background()); err != nil {
				logger.Warn("Session lock release failed", "err", err)
			}
		}()
	}

	// Resolve the capture source and optics up front; a rig without a usable
	// frame source should fail now, not after the operator starts clicking.
	if err := h.store.Load(sigCtx); err != nil {
		logger.Warn("Config load failed, starting empty", "err", err)
	}
	if opts.Source != "" {
		h.store.Add(domain.KeySourceFn, opts.Source)
	}
	if opts.VFOV != 0 {
		h.store.Add(domain.KeyVFOV, opts.VFOV)
	}

	src, _ := runtime.StoredString(h.store, domain.KeySourceFn)
	if src == "" {
		return fmt.Errorf("no frame source configured: set src_fn in the config or pass --src")
	}
	vfov, ok := runtime.StoredFloat(h.store, domain.KeyVFOV)
	if !ok || vfov <= 0 {
		return fmt.Errorf("vertical field of view must be a positive angle in degrees: set vfov in the config or pass --vfov")
	}

	logger.Info("Opening frame source", "src", src)
	frames, err := gocv.Open(src)
	if err != nil {
		return err
	}
	defer frames.Close()

	probe, err := frames.Grab(sigCtx)
	if err != nil {
		return fmt.Errorf("probing frame source '%s': %w", src, err)
	}
	source := &rewindSource{base: frames, probe: probe}

	bounds := probe.Bounds()
	var cam ports.CameraModel
	if opts.Fisheye {
		cam = camera.NewFisheye(bounds.Dx(), bounds.Dy(), vfov*math.Pi/180)
	} else {
		cam = camera.NewRectilinear(bounds.Dx(), bounds.Dy(), vfov*math.Pi/180)
	}
	logger.Info("Camera model ready",
		"width", bounds.Dx(), "height", bounds.Dy(), "vfov_deg", vfov, "fisheye", opts.Fisheye)

	annotator := gocv.NewAnnotator()

	hooks := domain.LifecycleHooks{}
	if opts.Debug {
		hooks = hooks.Merge(createDebugHooks(logger))
	}

	wizOpts := []spherecal.Option{
		spherecal.WithSnapshot(annotator, snapshotPath(opts)),
	}
	if opts.Debug {
		wizOpts = append(wizOpts, spherecal.WithLogger(logger))
	}

	var res spherecal.Result
	if interactive {
		win := fyneui.New("spherecal — sphere calibration")
		prompter := terminal.NewPrompter(os.Stdin, os.Stdout, terminal.WithRenderer(tui.NewRenderer()))

		wiz, err := spherecal.New(h.store, cam, spherecal.Frontend{
			Frames:   source,
			Input:    win,
			Renderer: win,
			Prompter: prompter,
		}, append(wizOpts, spherecal.WithLifecycleHooks(hooks))...)
		if err != nil {
			return err
		}

		// The fyne loop must own the main goroutine; the wizard runs beside
		// it and stops the loop when the session ends.
		done := make(chan spherecal.Result, 1)
		go func() {
			done <- wiz.Run(sigCtx)
			win.Quit()
		}()
		win.ShowAndRun()
		res = <-done
	} else {
		// Headless rigs drive the session over HTTP; metrics ride on the
		// same listener.
		rec, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
		if err != nil {
			logger.Warn("Metrics registration failed", "err", err)
		} else {
			hooks = hooks.Merge(rec.Hooks())
		}

		remote := httpui.New(httpui.WithRasterizer(annotator), httpui.WithLogger(logger))
		wiz, err := spherecal.New(h.store, cam, spherecal.Frontend{
			Frames:   source,
			Input:    remote,
			Renderer: remote,
			Prompter: remote,
		}, append(wizOpts, spherecal.WithLifecycleHooks(hooks))...)
		if err != nil {
			return err
		}

		go func() {
			if err := remote.ListenAndServe(sigCtx, opts.Remote); err != nil {
				logger.Error("Frontend server failed", "err", err)
				sigCtx.Cancel()
			}
		}()
		printSystemMessage("Serving the calibration frontend on '%s'.", opts.Remote)

		res = wiz.Run(sigCtx)
	}

	logCompletion(res, opts.Debug, sigCtx.Signal())

	if res.Cancelled() {
		// The message is already on screen; the exit code still reports it.
		return domain.ErrCancelled
	}
	return handleExecutionError(res.Err)
}

// rewindSource replays the probe frame taken during start-up as the first
// grab, so the frame the camera model was sized on is the frame the operator
// annotates.
type rewindSource struct {
	base  ports.FrameSource
	probe image.Image
}

func (s *rewindSource) Grab(ctx context.Context) (image.Image, error) {
	if s.probe != nil {
		frame := s.probe
		s.probe = nil
		return frame, nil
	}
	return s.base.Grab(ctx)
}

func (s *rewindSource) Close() error {
	return s.base.Close()
}

// snapshotPath derives where the annotated exit snapshot lands: next to a
// file-backed config, or the working directory for a Redis-backed one.
func snapshotPath(opts RunOptions) string {
	if opts.RedisAddr != "" {
		return "spherecal-configImg.png"
	}
	ext := filepath.Ext(opts.ConfigPath)
	return strings.TrimSuffix(opts.ConfigPath, ext) + "-configImg.png"
}
