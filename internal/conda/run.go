// SPDX-License-Identifier: MPL-2.0

package conda

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"envrun/pkg/types"
)

// Stdio bundles the streams wired to the target process.
type Stdio struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RunScript executes the target script under the given interpreter,
// forwarding args verbatim. The child's exit code is returned as-is in the
// Result; a script failure is not a launcher error. Only a spawn failure
// (interpreter missing, permission denied) sets Result.Error.
func (c *Client) RunScript(ctx context.Context, interpreter, script string, args []string, stdio Stdio) *Result {
	argv := append([]string{script}, args...)
	cmd := exec.CommandContext(ctx, interpreter, argv...)
	cmd.Stdin = stdio.In
	cmd.Stdout = stdio.Out
	cmd.Stderr = stdio.Err

	c.logger.Debug("launching target", "interpreter", interpreter, "script", script, "args", args)

	if err := c.runner(cmd); err != nil {
		code := types.ExitCodeFromError(err)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return NewExitCodeResult(code)
		}
		return NewErrorResult(code, fmt.Errorf("failed to launch %s: %w", script, err))
	}

	return NewSuccessResult()
}
