// Package main is the entry point for the canary CLI.
//
// The canary can be run either as a library (SDK) or as a standalone
// binary configured from the environment or a YAML file. This CLI
// provides the standalone binary approach.
//
// Usage:
//
//	canary serve                    # Start with env config (OPERATOR_TOKEN, IP, PORT)
//	canary serve -c canary.yaml     # Start with a config file
//	canary validate -c canary.yaml  # Validate configuration
//	canary version                  # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "canary",
	Short: "A minimal presence canary / dead man's switch",
	Long: `Canary is a minimal presence canary: a dead man's switch that shows
how long ago a trusted process last reported in.

An operator process POSTs liveness pings with a shared bearer token; the
canary keeps a short rolling history in memory and renders it as a status
page with human-relative timestamps. No database, no disk state.

Quick start:
  1. export OPERATOR_TOKEN=some-secret
  2. Run: canary serve
  3. Open http://127.0.0.1:3000 in your browser
  4. Report in: curl -X POST -H "Authorization: Bearer some-secret" \
       -d "backup finished" http://127.0.0.1:3000/

Configuration comes from the environment (OPERATOR_TOKEN, IP, PORT) or
from a YAML file:

  title: presence canary
  ip: 0.0.0.0
  port: 3000
  capacity: 8
  token: ${OPERATOR_TOKEN}`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this canary binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("canary %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
