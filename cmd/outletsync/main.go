// Outletsync reconciles cloud-connected smart switches toward a desired state.
//
// Given one or more parameter changes for a device, it fetches the device's
// live state, submits only the parameters that actually differ, and verifies
// the device converged to the requested values. Single switches and
// multi-outlet power strips are both supported.
//
// Usage:
//
//	outletsync [command] [flags]
//
// See 'outletsync --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/outletsync/outletsync/internal/logging"
	"github.com/outletsync/outletsync/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "outletsync",
	Short: "Smart switch state reconciliation",
	Long: `Reconcile cloud-connected smart switches toward a desired state.

Outletsync compares the requested parameter values against the device's
live state, writes only what actually changed, and reads the values back
to confirm the device converged.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("outletsync %s (commit: %s)\n", version.Version, version.Commit)
	},
}
