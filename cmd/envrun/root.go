// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for envrun.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"envrun/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool

	// rootCmd represents the base command when called without any subcommands.
	// Flag parsing is disabled so every argument after the launcher's own
	// leading flags reaches the target script byte for byte; dispatch happens
	// in parseInvocation instead of pflag.
	rootCmd = &cobra.Command{
		Use:                "envrun [args...]",
		Short:              "Run a script inside its conda environment",
		DisableFlagParsing: true,
		Long: TitleStyle.Render("envrun") + SubtitleStyle.Render(" - conda environment launcher") + `

envrun makes sure the conda environment described by your project's
environment.yml exists (creating or updating it as needed), then runs
the configured target script inside it. Arguments are forwarded to the
script unchanged, and the script's exit code becomes envrun's own.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Put an environment.yml with a top-level name next to your project
  2. Point envrun at your script via envrun.cue (default: src/main.py)
  3. Run it with: envrun [script args...]

` + SubtitleStyle.Render("Examples:") + `
  envrun --input data.csv       Run the script, forwarding its flags
  envrun --update -- train      Update the environment first, then run
  envrun --install pandas       Install a package and refresh the file
  envrun update_environment     Force an update from environment.yml
  envrun save_environment       Export the live environment to the file
  envrun config show            Show current configuration`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args)
		},
	}
)

func init() {
	rootCmd.AddCommand(updateEnvironmentCmd)
	rootCmd.AddCommand(saveEnvironmentCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(int(exitErr.Code))
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
