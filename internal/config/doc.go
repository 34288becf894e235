// SPDX-License-Identifier: MPL-2.0

// Package config handles launcher configuration using Viper with CUE as the file format.
//
// Configuration is loaded from ~/.config/envrun/config.cue (or XDG equivalent
// on Linux, ~/Library/Application Support/envrun/config.cue on macOS,
// %APPDATA%\envrun\config.cue on Windows), then a project-local envrun.cue in
// the working directory is merged over it. The per-project file is where a
// project pins its environment file and target script; the global file holds
// machine-wide settings such as a non-standard conda binary path.
//
// Configuration validation is performed against a CUE schema
// (config_schema.cue) to ensure type safety and clear error messages for
// invalid configurations.
package config
