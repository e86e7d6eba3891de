package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/spherecal/internal/cli"
)

var showCmd = &cobra.Command{
	Use:   "show [config]",
	Short: "Summarize the calibration document",
	Long:  `Prints the artifacts stored in a config document without starting a session.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := cli.RunShow(documentOptions(cmd, args), os.Stdout); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
