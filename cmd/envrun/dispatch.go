// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"envrun/internal/conda"
	"envrun/internal/config"
	"envrun/internal/issue"
	"envrun/internal/launcher"
	"envrun/pkg/envfile"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// invocation is the decoded form of a root command line: the launcher's own
// leading flags, then everything destined for the target script.
type invocation struct {
	verbose     bool
	cfgPath     string
	showHelp    bool
	showVersion bool
	forceUpdate bool
	install     envfile.PackageSpec
	uninstall   envfile.PackageSpec
	// args is forwarded to the target script byte for byte.
	args []string
}

// parseInvocation scans the launcher's own flags from the front of the
// argument list. The first token it does not recognize ends the scan; that
// token and everything after it belongs to the target script, including
// anything that looks like a flag.
func parseInvocation(args []string) (*invocation, error) {
	inv := &invocation{}
	i := 0
scan:
	for i < len(args) {
		switch arg := args[i]; {
		case arg == "--verbose" || arg == "-v":
			inv.verbose = true
		case arg == "--config":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag --config requires a file argument")
			}
			i++
			inv.cfgPath = args[i]
		case strings.HasPrefix(arg, "--config="):
			inv.cfgPath = strings.TrimPrefix(arg, "--config=")
		case arg == "--update":
			inv.forceUpdate = true
		case arg == "--install":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag --install requires a package argument")
			}
			i++
			inv.install = envfile.PackageSpec(args[i])
		case arg == "--uninstall":
			if i+1 >= len(args) {
				return nil, fmt.Errorf("flag --uninstall requires a package argument")
			}
			i++
			inv.uninstall = envfile.PackageSpec(args[i])
		case arg == "--help" || arg == "-h":
			inv.showHelp = true
		case arg == "--version":
			inv.showVersion = true
		case arg == "--":
			// Explicit separator: the rest is script args even if it
			// collides with a launcher flag name.
			i++
			break scan
		default:
			break scan
		}
		i++
	}
	inv.args = args[i:]
	return inv, nil
}

// runRoot is the RunE handler for the bare `envrun [args...]` form.
func runRoot(cobraCmd *cobra.Command, args []string) error {
	inv, err := parseInvocation(args)
	if err != nil {
		return err
	}
	if inv.showHelp {
		return cobraCmd.Help()
	}
	if inv.showVersion {
		fmt.Println(getVersionString())
		return nil
	}
	if inv.verbose {
		verbose = true
	}
	if inv.cfgPath != "" {
		config.SetConfigFilePathOverride(inv.cfgPath)
	}

	svc := newLauncherService()
	ctx := cobraCmd.Context()

	// Package mutations run instead of the script; forwarded args are ignored
	// for these modes.
	switch {
	case inv.install != "":
		return reportError(svc.InstallPackage(ctx, inv.install))
	case inv.uninstall != "":
		return reportError(svc.UninstallPackage(ctx, inv.uninstall))
	}

	code, err := svc.Launch(ctx, inv.args, inv.forceUpdate)
	if err != nil {
		return reportError(err)
	}
	if !code.IsSuccess() {
		return &ExitError{Code: code}
	}
	return nil
}

// newLauncherService assembles the launcher from configuration. A broken
// config is downgraded to a warning and the defaults are used, so a stray
// envrun.cue never blocks a launch.
func newLauncherService() *launcher.Service {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		cfg = config.DefaultConfig()
	}
	if cfg.UI.Verbose {
		verbose = true
	}
	colorScheme = cfg.UI.ColorScheme

	logger := newLogger()
	client := conda.New(string(cfg.CondaBinary), conda.WithLogger(logger))
	return launcher.New(client, launcher.Options{
		EnvironmentFile: string(cfg.EnvironmentFile),
		Script:          string(cfg.Script),
		Logger:          logger,
	})
}

func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

var (
	// colorScheme is the resolved issue-card color scheme, set when
	// configuration loads.
	colorScheme = config.ColorSchemeAuto

	// renderCard is swapped out in tests to observe the style in use.
	renderCard = func(iss *issue.Issue, stylePath string) (string, error) {
		return iss.Render(stylePath)
	}
)

// reportError renders the matching issue card to stderr (when one exists for
// the failure class) and passes the error through for exit-code handling.
func reportError(err error) error {
	if err == nil {
		return nil
	}
	if iss := issueFor(err); iss != nil {
		if rendered, rerr := renderCard(iss, glamourStyle(colorScheme)); rerr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
	}
	return err
}

// glamourStyle maps the configured color scheme to a glamour style name.
// Auto defers to glamour's terminal background detection.
func glamourStyle(scheme config.ColorScheme) string {
	switch scheme {
	case config.ColorSchemeDark:
		return "dark"
	case config.ColorSchemeLight:
		return "light"
	default:
		return "auto"
	}
}

// issueFor maps a failure to its remediation card, or nil when the plain
// error text is all there is to say.
func issueFor(err error) *issue.Issue {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return issue.Lookup(issue.CondaNotFoundId)
	case errors.Is(err, conda.ErrEnvironmentNotFound):
		return issue.Lookup(issue.EnvironmentNotFoundId)
	case errors.Is(err, fs.ErrNotExist):
		return issue.Lookup(issue.EnvFileNotFoundId)
	case errors.Is(err, envfile.ErrParse), errors.Is(err, envfile.ErrInvalidEnvironmentName):
		return issue.Lookup(issue.EnvFileParseErrorId)
	default:
		return nil
	}
}
