// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"envrun/internal/config"

	"github.com/spf13/cobra"
)

// configCmd is the `envrun config` command tree.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage envrun configuration",
	Long: `Manage envrun configuration.

Configuration is stored in:
  - Linux: ~/.config/envrun/config.cue
  - macOS: ~/Library/Application Support/envrun/config.cue
  - Windows: %APPDATA%\envrun\config.cue

A project-local envrun.cue in the working directory is merged over the
global file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	if path, ok := globalConfigPath(); ok {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Printf("%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s: %s\n", keyStyle.Render("environment_file"), valueStyle.Render(string(cfg.EnvironmentFile)))
	fmt.Printf("%s: %s\n", keyStyle.Render("script"), valueStyle.Render(string(cfg.Script)))
	fmt.Printf("%s: %s\n", keyStyle.Render("conda_binary"), valueStyle.Render(string(cfg.CondaBinary)))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.color_scheme"), valueStyle.Render(string(cfg.UI.ColorScheme)))
	fmt.Printf("%s: %s\n", keyStyle.Render("ui.verbose"), valueStyle.Render(fmt.Sprintf("%t", cfg.UI.Verbose)))
	return nil
}

func initConfig() error {
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("%s Configuration file already exists: %s\n", WarningStyle.Render("!"), path)
		return nil
	}

	content := config.GenerateCUE(config.DefaultConfig())
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file at %s: %w", path, err)
	}

	fmt.Printf("%s Created configuration file: %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Println(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

// globalConfigPath reports the global config file location when it exists.
func globalConfigPath() (string, bool) {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return "", false
	}
	path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
