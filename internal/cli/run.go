package cli

import (
	"fmt"
)

// RunOptions contains all the configuration for the run command.
type RunOptions struct {
	ConfigPath string  // YAML document on disk
	RedisAddr  string  // when set, the document lives in Redis instead
	RedisKey   string  // Redis key override for the document
	Source     string  // frame source override, staged as src_fn
	VFOV       float64 // vertical field of view override in degrees, staged as vfov
	Fisheye    bool    // treat the lens as equidistant fisheye
	Remote     string  // listen address for the HTTP frontend; empty opens the window
	Debug      bool
}

// Execute handles the 'run' command logic. When both a config path and a
// Redis address are given, Redis holds the document and the path is ignored.
func Execute(opts RunOptions) error {
	if opts.ConfigPath == "" && opts.RedisAddr == "" {
		return fmt.Errorf("a config document is required: pass --config or --redis")
	}
	return RunSession(opts)
}
