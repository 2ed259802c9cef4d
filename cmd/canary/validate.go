package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/finchly/canary/config"
)

// validateCmd validates a config file without starting the server.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate a canary configuration file without starting the server.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  canary validate -c canary.yaml
  canary validate --config /etc/canary/canary.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fmt.Print(summarize(cfg))
	return nil
}

// summarize renders a human-readable config summary. The token itself is
// never echoed, only whether one is set.
func summarize(cfg *config.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Config is valid!\n")
	if cfg.Title != "" {
		fmt.Fprintf(&b, "  Title:    %s\n", cfg.Title)
	}
	fmt.Fprintf(&b, "  Listen:   %s:%d\n", cfg.IP, cfg.Port)
	fmt.Fprintf(&b, "  Capacity: %d pings\n", cfg.Capacity)
	fmt.Fprintf(&b, "  Token:    set (%d chars)\n", len(cfg.Token))
	return b.String()
}
