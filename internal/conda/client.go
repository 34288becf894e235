// SPDX-License-Identifier: MPL-2.0

package conda

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"envrun/pkg/envfile"

	"github.com/charmbracelet/log"
)

// DefaultBinary is the conda executable name resolved against PATH when no
// override is configured.
const DefaultBinary = "conda"

type (
	// Runner executes a prepared command. The production runner is
	// (*exec.Cmd).Run; tests substitute one that inspects cmd.Args and
	// writes canned output to cmd.Stdout.
	Runner func(cmd *exec.Cmd) error

	// Environment is one entry of conda's environment inventory.
	Environment struct {
		Name   envfile.EnvironmentName
		Prefix string
	}

	// Client invokes the conda executable. All methods are blocking
	// child-process calls; the Context passed to each method bounds the
	// invocation.
	Client struct {
		binary string
		stdout io.Writer
		stderr io.Writer
		runner Runner
		logger *log.Logger
	}

	// Option configures a Client.
	Option func(*Client)
)

// WithStdio sets the writers that passthrough commands (create, update,
// install, remove) attach to the child process. Defaults to os.Stdout and
// os.Stderr.
func WithStdio(stdout, stderr io.Writer) Option {
	return func(c *Client) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithRunner substitutes the command runner. Tests use this to exercise the
// client without a conda installation.
func WithRunner(r Runner) Option {
	return func(c *Client) { c.runner = r }
}

// WithLogger sets the diagnostic logger. Defaults to a discard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a Client for the given conda binary. An empty binary falls
// back to DefaultBinary.
func New(binary string, opts ...Option) *Client {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &Client{
		binary: binary,
		stdout: os.Stdout,
		stderr: os.Stderr,
		runner: func(cmd *exec.Cmd) error { return cmd.Run() },
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binary returns the configured conda executable name or path.
func (c *Client) Binary() string { return c.binary }

// Locate resolves the conda executable against PATH (or verifies a
// configured absolute path). This is the launcher's tool-available check and
// runs before any environment operation.
func (c *Client) Locate() (string, error) {
	path, err := exec.LookPath(c.binary)
	if err != nil {
		return "", fmt.Errorf("conda executable %q not found: %w", c.binary, err)
	}
	return path, nil
}

// Version returns conda's version string, trimmed.
func (c *Client) Version(ctx context.Context) (string, error) {
	out, err := c.capture(ctx, "--version")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Environments returns conda's environment inventory, decoded from the
// structured output of env list --json. Environment names are the basenames
// of the returned prefix paths.
func (c *Client) Environments(ctx context.Context) ([]Environment, error) {
	out, err := c.capture(ctx, "env", "list", "--json")
	if err != nil {
		return nil, err
	}

	var inventory struct {
		Envs []string `json:"envs"`
	}
	if err := json.Unmarshal(out, &inventory); err != nil {
		return nil, fmt.Errorf("failed to decode conda env list output: %w", err)
	}

	envs := make([]Environment, 0, len(inventory.Envs))
	for _, prefix := range inventory.Envs {
		envs = append(envs, Environment{
			Name:   envfile.EnvironmentName(filepath.Base(prefix)),
			Prefix: prefix,
		})
	}
	return envs, nil
}

// EnvironmentExists reports whether a named environment is present in
// conda's inventory.
func (c *Client) EnvironmentExists(ctx context.Context, name envfile.EnvironmentName) (bool, error) {
	envs, err := c.Environments(ctx)
	if err != nil {
		return false, err
	}
	for _, env := range envs {
		if env.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// EnvironmentPrefix returns the on-disk prefix of a named environment, or
// ErrEnvironmentNotFound if conda does not know it.
func (c *Client) EnvironmentPrefix(ctx context.Context, name envfile.EnvironmentName) (string, error) {
	envs, err := c.Environments(ctx)
	if err != nil {
		return "", err
	}
	for _, env := range envs {
		if env.Name == name {
			return env.Prefix, nil
		}
	}
	return "", &EnvironmentNotFoundError{Name: name}
}

// CreateEnvironment creates an environment from a specification file.
// conda's own output streams to the configured stdio.
func (c *Client) CreateEnvironment(ctx context.Context, specPath string) error {
	return c.passthrough(ctx, "env", "create", "-f", specPath)
}

// UpdateEnvironment updates an environment from a specification file,
// pruning dependencies that were removed from it.
func (c *Client) UpdateEnvironment(ctx context.Context, specPath string) error {
	return c.passthrough(ctx, "env", "update", "-f", specPath, "--prune")
}

// ExportEnvironment returns the raw export of a named environment. The
// caller is responsible for sanitizing the content before persisting it.
func (c *Client) ExportEnvironment(ctx context.Context, name envfile.EnvironmentName) ([]byte, error) {
	return c.capture(ctx, "env", "export", "-n", name.String())
}

// InstallPackage installs a package into a named environment.
func (c *Client) InstallPackage(ctx context.Context, name envfile.EnvironmentName, pkg envfile.PackageSpec) error {
	return c.passthrough(ctx, "install", "-n", name.String(), "-y", pkg.String())
}

// RemovePackage removes a package from a named environment.
func (c *Client) RemovePackage(ctx context.Context, name envfile.EnvironmentName, pkg envfile.PackageSpec) error {
	return c.passthrough(ctx, "remove", "-n", name.String(), "-y", pkg.String())
}

// PythonPath derives the path of an environment's Python interpreter from
// its prefix, without activating a shell session.
func PythonPath(prefix string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(prefix, "python.exe")
	}
	return filepath.Join(prefix, "bin", "python")
}

// capture runs a conda query command and returns its stdout. On a non-zero
// exit, the captured stderr is folded into the returned error so the
// operator sees conda's own diagnostic.
func (c *Client) capture(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.Debug("running conda", "args", args)

	if err := c.runner(cmd); err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag != "" {
			return nil, fmt.Errorf("conda %s failed: %s: %w", strings.Join(args, " "), diag, err)
		}
		return nil, fmt.Errorf("conda %s failed: %w", strings.Join(args, " "), err)
	}

	return stdout.Bytes(), nil
}

// passthrough runs a conda mutating command with the child's stdio attached
// to the configured writers, so conda's progress and error output reaches
// the operator verbatim.
func (c *Client) passthrough(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr
	cmd.Stdin = os.Stdin

	c.logger.Debug("running conda", "args", args)

	if err := c.runner(cmd); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("conda %s exited with status %d", strings.Join(args, " "), exitErr.ExitCode())
		}
		return fmt.Errorf("conda %s failed: %w", strings.Join(args, " "), err)
	}
	return nil
}
