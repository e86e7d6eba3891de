package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/spherecal/internal/runtime"
	"github.com/aretw0/spherecal/pkg/domain"
	"github.com/aretw0/spherecal/pkg/ports"
)

// RunShow prints a summary of the calibration document without starting a
// session. It never takes the session lock, so it is safe while a wizard is
// running elsewhere.
func RunShow(opts RunOptions, out io.Writer) error {
	if opts.ConfigPath == "" && opts.RedisAddr == "" {
		return fmt.Errorf("a config document is required: pass --config or --redis")
	}

	h := openStore(opts)
	defer h.close()

	if err := h.store.Load(context.Background()); err != nil {
		return err
	}

	fmt.Fprintf(out, "Calibration document '%s'\n", h.key)
	writeSourceSummary(out, h.store)
	writeCircSummary(out, h.store)
	writeIgnoreSummary(out, h.store)
	writeTransformSummary(out, h.store)
	return nil
}

func writeSourceSummary(out io.Writer, s ports.ConfigStore) {
	src, ok := runtime.StoredString(s, domain.KeySourceFn)
	if !ok || src == "" {
		src = "(not set)"
	}
	fmt.Fprintf(out, "  %-15s %s\n", "Frame source:", src)

	if vfov, ok := runtime.StoredFloat(s, domain.KeyVFOV); ok && vfov > 0 {
		fmt.Fprintf(out, "  %-15s %g deg\n", "Vertical FOV:", vfov)
	} else {
		fmt.Fprintf(out, "  %-15s (not set)\n", "Vertical FOV:")
	}
}

func writeCircSummary(out io.Writer, s ports.ConfigStore) {
	flat, ok := runtime.StoredInts(s, domain.KeyCircRoi)
	if !ok || len(flat) == 0 || len(flat)%2 != 0 {
		fmt.Fprintf(out, "  %-15s (not set)\n", "Circumference:")
		return
	}
	fmt.Fprintf(out, "  %-15s %d points\n", "Circumference:", len(flat)/2)
}

func writeIgnoreSummary(out io.Writer, s ports.ConfigStore) {
	lists, ok := runtime.StoredIntLists(s, domain.KeyIgnoreRoi)
	if !ok || len(lists) == 0 {
		fmt.Fprintf(out, "  %-15s none\n", "Ignore regions:")
		return
	}
	sizes := make([]string, len(lists))
	for i, poly := range lists {
		sizes[i] = fmt.Sprintf("%d", len(poly)/2)
	}
	fmt.Fprintf(out, "  %-15s %d (vertices: %s)\n", "Ignore regions:", len(lists), strings.Join(sizes, ", "))
}

func writeTransformSummary(out io.Writer, s ports.ConfigStore) {
	src, ok := runtime.StoredString(s, domain.KeyTransform)
	method := domain.Method(src)
	r, rOK := runtime.StoredFloats(s, domain.KeyRotation, 3)
	t, tOK := runtime.StoredFloats(s, domain.KeyTranslation, 3)
	if !ok || !method.Valid() || !rOK || !tOK {
		fmt.Fprintf(out, "  %-15s (not set)\n", "Transform:")
		return
	}
	fmt.Fprintf(out, "  %-15s %s\n", "Transform:", method.Label())
	fmt.Fprintf(out, "    rotation:    [%.4f %.4f %.4f] rad (axis-angle)\n", r[0], r[1], r[2])
	fmt.Fprintf(out, "    translation: [%.4f %.4f %.4f] sphere radii\n", t[0], t[1], t[2])
}
