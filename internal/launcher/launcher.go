// SPDX-License-Identifier: MPL-2.0

package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"envrun/internal/conda"
	"envrun/internal/issue"
	"envrun/pkg/envfile"
	"envrun/pkg/types"

	"github.com/charmbracelet/log"
)

type (
	// Manager is the slice of the conda client the launcher depends on.
	// *conda.Client satisfies it; tests substitute a fake.
	Manager interface {
		Locate() (string, error)
		Version(ctx context.Context) (string, error)
		EnvironmentExists(ctx context.Context, name envfile.EnvironmentName) (bool, error)
		EnvironmentPrefix(ctx context.Context, name envfile.EnvironmentName) (string, error)
		CreateEnvironment(ctx context.Context, specPath string) error
		UpdateEnvironment(ctx context.Context, specPath string) error
		ExportEnvironment(ctx context.Context, name envfile.EnvironmentName) ([]byte, error)
		InstallPackage(ctx context.Context, name envfile.EnvironmentName, pkg envfile.PackageSpec) error
		RemovePackage(ctx context.Context, name envfile.EnvironmentName, pkg envfile.PackageSpec) error
		RunScript(ctx context.Context, interpreter, script string, args []string, stdio conda.Stdio) *conda.Result
	}

	// Options configures a Service.
	Options struct {
		// EnvironmentFile is the path of the specification file.
		EnvironmentFile string
		// Script is the path of the target script.
		Script string
		// Stdio is wired to the target script process.
		Stdio conda.Stdio
		// Logger receives progress and diagnostic output. Nil means discard.
		Logger *log.Logger
	}

	// Service runs the launcher's linear control flow:
	// tool check, ensure environment, exec target.
	Service struct {
		manager Manager
		envFile string
		script  string
		stdio   conda.Stdio
		logger  *log.Logger
	}
)

// New creates a launcher Service over the given environment manager.
func New(manager Manager, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	stdio := opts.Stdio
	if stdio.In == nil {
		stdio.In = os.Stdin
	}
	if stdio.Out == nil {
		stdio.Out = os.Stdout
	}
	if stdio.Err == nil {
		stdio.Err = os.Stderr
	}
	return &Service{
		manager: manager,
		envFile: opts.EnvironmentFile,
		script:  opts.Script,
		stdio:   stdio,
		logger:  logger,
	}
}

// Launch ensures the environment, resolves its interpreter, and runs the
// target script with args forwarded verbatim. The returned exit code is the
// script's own; it is non-nil error only for launcher-side failures.
func (s *Service) Launch(ctx context.Context, args []string, forceUpdate bool) (types.ExitCode, error) {
	spec, err := s.ensure(ctx, forceUpdate)
	if err != nil {
		return 1, err
	}

	prefix, err := s.manager.EnvironmentPrefix(ctx, spec.Name)
	if err != nil {
		return 1, issue.WrapWithOperation(err, "resolve environment interpreter")
	}

	interpreter := conda.PythonPath(prefix)
	s.logger.Info("launching", "script", s.script, "interpreter", interpreter)

	result := s.manager.RunScript(ctx, interpreter, s.script, args, s.stdio)
	if result.Error != nil {
		return result.ExitCode, issue.WrapWithOperation(result.Error, "launch target script")
	}
	return result.ExitCode, nil
}

// Update always takes the update path, regardless of whether the
// environment already exists.
func (s *Service) Update(ctx context.Context) error {
	if err := s.checkTool(ctx); err != nil {
		return err
	}
	spec, err := s.loadSpec()
	if err != nil {
		return err
	}
	return s.updateEnvironment(ctx, spec)
}

// Save exports the live environment state and writes it over the
// specification file, sanitized: no environment-local prefix line, no build
// strings.
func (s *Service) Save(ctx context.Context) error {
	if err := s.checkTool(ctx); err != nil {
		return err
	}
	spec, err := s.loadSpec()
	if err != nil {
		return err
	}

	s.logger.Info("saving environment", "name", spec.Name, "file", s.envFile)

	raw, err := s.manager.ExportEnvironment(ctx, spec.Name)
	if err != nil {
		return issue.WrapWithOperation(err, "export environment")
	}

	if err := os.WriteFile(s.envFile, envfile.Sanitize(raw), 0o644); err != nil {
		return issue.NewErrorContext().
			WithOperation("write environment file").
			WithResource(s.envFile).
			Wrap(err).
			BuildError()
	}
	return nil
}

// InstallPackage installs a package into the existing environment, then
// re-exports the specification file so it reflects the new state.
func (s *Service) InstallPackage(ctx context.Context, pkg envfile.PackageSpec) error {
	return s.mutatePackage(ctx, pkg, "install package", s.manager.InstallPackage)
}

// UninstallPackage removes a package from the existing environment, then
// re-exports the specification file so it reflects the new state.
func (s *Service) UninstallPackage(ctx context.Context, pkg envfile.PackageSpec) error {
	return s.mutatePackage(ctx, pkg, "uninstall package", s.manager.RemovePackage)
}

// mutatePackage is the shared install/uninstall flow: the environment must
// already exist (the default launch path is how it gets created), the
// package operation runs, and the specification file is re-exported.
func (s *Service) mutatePackage(
	ctx context.Context,
	pkg envfile.PackageSpec,
	operation string,
	apply func(context.Context, envfile.EnvironmentName, envfile.PackageSpec) error,
) error {
	if ok, errs := pkg.IsValid(); !ok {
		return issue.WrapWithOperation(errs[0], operation)
	}
	if err := s.checkTool(ctx); err != nil {
		return err
	}
	spec, err := s.loadSpec()
	if err != nil {
		return err
	}

	exists, err := s.manager.EnvironmentExists(ctx, spec.Name)
	if err != nil {
		return issue.WrapWithOperation(err, "query environments")
	}
	if !exists {
		return issue.NewErrorContext().
			WithOperation(operation).
			WithResource(pkg.String()).
			WithSuggestion("Run 'envrun' without arguments first to create the environment").
			Wrap(&conda.EnvironmentNotFoundError{Name: spec.Name}).
			BuildError()
	}

	s.logger.Info(operation, "package", pkg, "environment", spec.Name)

	if err := apply(ctx, spec.Name, pkg); err != nil {
		return issue.WrapWithOperation(err, operation)
	}
	return s.Save(ctx)
}

// ensure implements {tool-check} -> {exists?} -> [create|update|skip].
// It returns the parsed specification file for the later launch steps.
func (s *Service) ensure(ctx context.Context, forceUpdate bool) (*envfile.File, error) {
	if err := s.checkTool(ctx); err != nil {
		return nil, err
	}
	spec, err := s.loadSpec()
	if err != nil {
		return nil, err
	}

	if forceUpdate {
		return spec, s.updateEnvironment(ctx, spec)
	}

	exists, err := s.manager.EnvironmentExists(ctx, spec.Name)
	if err != nil {
		return nil, issue.WrapWithOperation(err, "query environments")
	}
	if exists {
		s.logger.Debug("environment found", "name", spec.Name)
		return spec, nil
	}

	s.logger.Info("creating environment", "name", spec.Name, "file", s.envFile)
	if err := s.withSanitizedSpec(func(path string) error {
		return s.manager.CreateEnvironment(ctx, path)
	}); err != nil {
		return nil, issue.WrapWithOperation(err, "create environment")
	}
	return spec, nil
}

// checkTool verifies the conda executable is reachable before any
// environment operation is attempted.
func (s *Service) checkTool(ctx context.Context) error {
	if _, err := s.manager.Locate(); err != nil {
		return issue.NewErrorContext().
			WithOperation("locate conda").
			WithSuggestion("Install Miniconda or add conda to your PATH").
			WithSuggestion("Set conda_binary in envrun.cue if conda lives in a non-standard place").
			Wrap(err).
			BuildError()
	}

	if version, err := s.manager.Version(ctx); err == nil {
		s.logger.Debug("conda detected", "version", version)
	}
	return nil
}

// loadSpec reads and parses the specification file, attaching remediation
// context to the two common failure modes (file missing, file malformed).
func (s *Service) loadSpec() (*envfile.File, error) {
	spec, err := envfile.Load(s.envFile)
	if err != nil {
		ctx := issue.NewErrorContext().
			WithOperation("load environment file").
			WithResource(s.envFile).
			Wrap(err)
		if errors.Is(err, fs.ErrNotExist) {
			ctx.WithSuggestion("Create an environment.yml next to your project").
				WithSuggestion("Or set environment_file in envrun.cue")
		} else {
			ctx.WithSuggestion("Check the file is valid YAML with a top-level name field")
		}
		return nil, ctx.BuildError()
	}
	return spec, nil
}

func (s *Service) updateEnvironment(ctx context.Context, spec *envfile.File) error {
	s.logger.Info("updating environment", "name", spec.Name, "file", s.envFile)
	if err := s.withSanitizedSpec(func(path string) error {
		return s.manager.UpdateEnvironment(ctx, path)
	}); err != nil {
		return issue.WrapWithOperation(err, "update environment")
	}
	return nil
}

// withSanitizedSpec feeds conda a sanitized temp copy of the specification
// file, never the project's own copy.
func (s *Service) withSanitizedSpec(fn func(path string) error) error {
	raw, err := os.ReadFile(s.envFile)
	if err != nil {
		return fmt.Errorf("failed to read environment file at %s: %w", s.envFile, err)
	}
	path, cleanup, err := envfile.WriteTemp(raw)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(path)
}
