// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidFilePath is the sentinel error wrapped by InvalidFilePathError.
	ErrInvalidFilePath = errors.New("invalid file path")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// FilePath represents a configured filesystem path (environment file,
	// target script, or conda binary). A valid path is non-empty and not
	// whitespace-only.
	FilePath string

	// InvalidFilePathError is returned when a FilePath value is empty or
	// whitespace-only. It wraps ErrInvalidFilePath for errors.Is().
	InvalidFilePathError struct {
		Field string
		Value FilePath
	}

	// UIConfig holds user interface settings.
	UIConfig struct {
		ColorScheme ColorScheme `mapstructure:"color_scheme"`
		Verbose     bool        `mapstructure:"verbose"`
	}

	// Config is the resolved launcher configuration.
	Config struct {
		// EnvironmentFile is the conda environment specification file.
		EnvironmentFile FilePath `mapstructure:"environment_file"`
		// Script is the target script launched inside the environment.
		Script FilePath `mapstructure:"script"`
		// CondaBinary is the name or path of the conda executable.
		CondaBinary FilePath `mapstructure:"conda_binary"`

		UI UIConfig `mapstructure:"ui"`
	}
)

// DefaultConfig returns the built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		EnvironmentFile: "environment.yml",
		Script:          "src/main.py",
		CondaBinary:     "conda",
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}

// String returns the string representation of the ColorScheme.
func (s ColorScheme) String() string { return string(s) }

// IsValid returns whether the ColorScheme is one of the recognized values.
func (s ColorScheme) IsValid() (bool, []error) {
	switch s {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: s}}
	}
}

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q: must be auto, dark, or light", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

// String returns the string representation of the FilePath.
func (p FilePath) String() string { return string(p) }

// IsValid returns whether the FilePath is valid.
// A valid path is non-empty and not whitespace-only.
func (p FilePath) IsValid() (bool, []error) {
	if strings.TrimSpace(string(p)) == "" {
		return false, []error{&InvalidFilePathError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidFilePathError.
func (e *InvalidFilePathError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid %s %q: must not be empty or whitespace-only", e.Field, e.Value)
	}
	return fmt.Sprintf("invalid file path %q: must not be empty or whitespace-only", e.Value)
}

// Unwrap returns ErrInvalidFilePath for errors.Is() compatibility.
func (e *InvalidFilePathError) Unwrap() error { return ErrInvalidFilePath }

// Validate checks the resolved configuration for constraints the CUE schema
// cannot express once defaults and merges are applied.
func (c *Config) Validate() error {
	fields := []struct {
		name  string
		value FilePath
	}{
		{"environment_file", c.EnvironmentFile},
		{"script", c.Script},
		{"conda_binary", c.CondaBinary},
	}
	for _, f := range fields {
		if ok, _ := f.value.IsValid(); !ok {
			return &InvalidFilePathError{Field: f.name, Value: f.value}
		}
	}

	if ok, errs := c.UI.ColorScheme.IsValid(); !ok {
		return errs[0]
	}
	return nil
}
