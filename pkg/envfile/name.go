// SPDX-License-Identifier: MPL-2.0

package envfile

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidEnvironmentName is the sentinel error wrapped by InvalidEnvironmentNameError.
	ErrInvalidEnvironmentName = errors.New("invalid environment name")
	// ErrInvalidPackageSpec is the sentinel error wrapped by InvalidPackageSpecError.
	ErrInvalidPackageSpec = errors.New("invalid package spec")
)

type (
	// EnvironmentName represents the name of a conda environment as declared
	// in the specification file's top-level name field. A valid name is
	// non-empty and contains no whitespace or path separators (conda derives
	// a directory name from it).
	EnvironmentName string

	// InvalidEnvironmentNameError is returned when an EnvironmentName value
	// is empty or contains forbidden characters. It wraps
	// ErrInvalidEnvironmentName for errors.Is() compatibility.
	InvalidEnvironmentNameError struct {
		Value EnvironmentName
	}

	// PackageSpec represents a conda package specifier, either a bare name
	// ("numpy") or a pinned form ("python=3.9.7"). A valid spec is non-empty
	// and contains no whitespace.
	PackageSpec string

	// InvalidPackageSpecError is returned when a PackageSpec value is empty
	// or contains whitespace. It wraps ErrInvalidPackageSpec for errors.Is().
	InvalidPackageSpecError struct {
		Value PackageSpec
	}
)

// String returns the string representation of the EnvironmentName.
func (n EnvironmentName) String() string { return string(n) }

// IsValid returns whether the EnvironmentName is valid.
// A valid name is non-empty and contains no whitespace or path separators.
func (n EnvironmentName) IsValid() (bool, []error) {
	s := string(n)
	if s == "" || strings.TrimSpace(s) != s || strings.ContainsAny(s, " \t/\\") {
		return false, []error{&InvalidEnvironmentNameError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidEnvironmentNameError.
func (e *InvalidEnvironmentNameError) Error() string {
	return fmt.Sprintf("invalid environment name %q: must be non-empty without whitespace or path separators", e.Value)
}

// Unwrap returns ErrInvalidEnvironmentName for errors.Is() compatibility.
func (e *InvalidEnvironmentNameError) Unwrap() error { return ErrInvalidEnvironmentName }

// String returns the string representation of the PackageSpec.
func (p PackageSpec) String() string { return string(p) }

// IsValid returns whether the PackageSpec is valid.
// A valid spec is non-empty and contains no whitespace.
func (p PackageSpec) IsValid() (bool, []error) {
	s := string(p)
	if s == "" || strings.ContainsAny(s, " \t\n") {
		return false, []error{&InvalidPackageSpecError{Value: p}}
	}
	return true, nil
}

// Error implements the error interface for InvalidPackageSpecError.
func (e *InvalidPackageSpecError) Error() string {
	return fmt.Sprintf("invalid package spec %q: must be non-empty without whitespace", e.Value)
}

// Unwrap returns ErrInvalidPackageSpec for errors.Is() compatibility.
func (e *InvalidPackageSpecError) Unwrap() error { return ErrInvalidPackageSpec }
