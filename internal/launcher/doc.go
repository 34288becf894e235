// SPDX-License-Identifier: MPL-2.0

// Package launcher orchestrates the launch sequence: verify the conda
// executable is available, make sure the named environment exists (creating
// or updating it from the specification file when required), resolve the
// environment's interpreter, and run the target script with the forwarded
// arguments. It also hosts the specification-file sub-commands: force
// update, save, and package install/uninstall with re-export.
//
// Control flow is strictly linear and every failure aborts immediately; the
// package holds no state between invocations.
package launcher
