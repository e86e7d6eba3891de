package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/spherecal/internal/cli"
	"github.com/aretw0/spherecal/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [config]",
	Short: "Run the interactive calibration session",
	Long: `Starts the calibration wizard against the configured frame source,
resuming from any artifacts already stored in the config document.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := documentOptions(cmd, args)
		opts.Source, _ = cmd.Flags().GetString("src")
		opts.VFOV, _ = cmd.Flags().GetFloat64("vfov")
		opts.Fisheye, _ = cmd.Flags().GetBool("fisheye")
		opts.Remote, _ = cmd.Flags().GetString("remote")
		opts.Debug, _ = cmd.Flags().GetBool("debug")

		if err := cli.Execute(opts); err != nil {
			// A deliberate cancel already printed its message; it only needs
			// the exit code.
			if !errors.Is(err, domain.ErrCancelled) {
				fmt.Printf("Error: %v\n", err)
			}
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("src", "", "Frame source override: camera id, video or image path")
	runCmd.Flags().Float64("vfov", 0, "Vertical field of view override, in degrees")
	runCmd.Flags().Bool("fisheye", false, "Treat the lens as an equidistant fisheye")
	runCmd.Flags().String("remote", "", "Serve the frontend over HTTP on this address instead of opening a window")
	runCmd.Flags().Bool("debug", false, "Enable debug logging")

	// Make 'run' the default if no command is provided
	rootCmd.Run = runCmd.Run
}
