// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"
)

// updateEnvironmentCmd forces an update pass from the specification file,
// whether or not the environment already matches it. The underscored name is
// part of the launcher's historical CLI surface.
var updateEnvironmentCmd = &cobra.Command{
	Use:   "update_environment",
	Short: "Update the environment from the specification file",
	Long: `Update the conda environment from the specification file.

The environment named in environment.yml is brought in line with the
file's channels and dependencies. Packages no longer listed are removed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportError(newLauncherService().Update(cmd.Context()))
	},
}

// saveEnvironmentCmd exports the live environment over the specification
// file, sanitized so the result stays portable across machines.
var saveEnvironmentCmd = &cobra.Command{
	Use:   "save_environment",
	Short: "Export the live environment to the specification file",
	Long: `Export the current state of the conda environment to the
specification file, overwriting it.

The export is sanitized before writing: the machine-local prefix line is
dropped and package build strings are stripped, so the file remains
portable across machines and operating systems.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportError(newLauncherService().Save(cmd.Context()))
	},
}

func init() {
	for _, c := range []*cobra.Command{updateEnvironmentCmd, saveEnvironmentCmd} {
		c.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	}
}
