// SPDX-License-Identifier: MPL-2.0

package conda

import (
	"errors"
	"fmt"

	"envrun/pkg/envfile"
)

// ErrEnvironmentNotFound is the sentinel error wrapped by EnvironmentNotFoundError.
var ErrEnvironmentNotFound = errors.New("environment not found")

// EnvironmentNotFoundError is returned when a named environment is absent
// from conda's inventory.
type EnvironmentNotFoundError struct {
	Name envfile.EnvironmentName
}

// Error implements the error interface.
func (e *EnvironmentNotFoundError) Error() string {
	return fmt.Sprintf("conda environment %q not found", e.Name)
}

// Unwrap returns ErrEnvironmentNotFound so callers can use errors.Is for
// programmatic detection.
func (e *EnvironmentNotFoundError) Unwrap() error { return ErrEnvironmentNotFound }
