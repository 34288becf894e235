// SPDX-License-Identifier: MPL-2.0

// Package issue provides the launcher's user-facing error machinery:
// ActionableError carries operation/resource context plus remediation
// suggestions, and Issue holds the rich markdown cards rendered for the
// handful of fatal conditions where a terse one-liner is not enough
// (most importantly: conda itself is not installed).
package issue
