package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/spherecal"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of spherecal",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("spherecal version %s\n", strings.TrimSpace(spherecal.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
