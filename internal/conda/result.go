// SPDX-License-Identifier: MPL-2.0

package conda

import "envrun/pkg/types"

// Result is the outcome of running a child process. A non-zero ExitCode with
// a nil Error is a normal termination (the child ran and failed on its own
// terms); Error is set only for infrastructure failures such as a spawn
// error.
type Result struct {
	ExitCode types.ExitCode
	Error    error
}

// NewErrorResult creates a Result with the given exit code and error.
func NewErrorResult(code types.ExitCode, err error) *Result {
	return &Result{ExitCode: code, Error: err}
}

// NewExitCodeResult creates a Result with the given exit code and no error.
// Use this for non-zero exits that represent normal process termination.
func NewExitCodeResult(code types.ExitCode) *Result {
	return &Result{ExitCode: code}
}

// NewSuccessResult creates a Result with exit code 0 and no error.
func NewSuccessResult() *Result {
	return &Result{}
}
