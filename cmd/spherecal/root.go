package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/spherecal/internal/cli"
)

var rootCmd = &cobra.Command{
	Use:   "spherecal",
	Short: "spherecal is an interactive camera-sphere calibration wizard",
	Long: `spherecal walks an operator through calibrating a camera against a
trackball sphere: the sphere circumference, ignore regions masking occluding
gear, and the camera-to-subject transform, each committed to the config
document as soon as it is confirmed.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "spherecal.yaml", "Path of the YAML calibration document")
	rootCmd.PersistentFlags().String("redis", "", "Redis address holding the document (overrides --config)")
	rootCmd.PersistentFlags().String("redis-key", "", "Redis key of the document")
}

// documentOptions reads the flags that locate the config document. A bare
// positional argument is accepted as the config path.
func documentOptions(cmd *cobra.Command, args []string) cli.RunOptions {
	configPath, _ := cmd.Flags().GetString("config")
	if !cmd.Flags().Changed("config") && len(args) > 0 {
		configPath = args[0]
	}
	redisAddr, _ := cmd.Flags().GetString("redis")
	redisKey, _ := cmd.Flags().GetString("redis-key")

	return cli.RunOptions{
		ConfigPath: configPath,
		RedisAddr:  redisAddr,
		RedisKey:   redisKey,
	}
}
