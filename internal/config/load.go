// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// Load resolves the launcher configuration using the package-level overrides
// set from CLI flags. This is the entry point used by command initialization.
func Load() (*Config, error) {
	return NewProvider().Load(context.Background(), LoadOptions{
		ConfigFilePath: configFilePathOverride,
	})
}
