// SPDX-License-Identifier: MPL-2.0

// Package conda is a thin client over the external conda executable.
//
// Every correctness guarantee about environments (dependency resolution,
// channel priority, prefix layout) belongs to conda; this package only
// constructs invocations, decodes the structured output of query commands,
// and propagates exit codes. Mutating commands (create, update, install,
// remove) run with passthrough stdio so conda's own diagnostics and progress
// output reach the operator verbatim.
package conda
