// Package cmd implements the gambitd command line: run the node,
// mint a fresh account for genesis, or print the build version.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// Build is the git version of this program. main sets it from its own
// build variable.
var Build = "develop"

var rootCmd = &cobra.Command{
	Use:   "gambitd",
	Short: "gambitd runs a gambit blockchain node",
}

// Execute runs the selected subcommand, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
