// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "distopia deployment launcher",
	Long: `bootstrap brings the distopia API stack up from a cold start:
it starts the database service, verifies the Python virtualenv, and
launches the TLS-terminated uvicorn server, then keeps the console
open until the operator dismisses it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute is the entry point called by main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bootstrap %s (commit %s, built %s)\n", Version, Commit, BuildDate)
	},
}
