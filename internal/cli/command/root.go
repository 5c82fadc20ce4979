package command

import (
	"errors"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/infra/buildinfo"
)

// AppName is the executable name used in hints.
const AppName = "fitplan-cli"

var (
	errNotLoggedIn    = fmt.Errorf("not logged in; run `%s login`", AppName)
	errSessionExpired = fmt.Errorf("session expired; run `%s login`", AppName)
)

// flagKeys maps global flags to the configuration keys they override.
var flagKeys = map[string]string{
	"server":              "server.url",
	"ca-file":             "server.ca_file",
	"output":              "output",
	"log-level":           "log.level",
	"log-format":          "log.format",
	"credentials-backend": "credentials.backend",
	"credentials-path":    "credentials.path",
}

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    AppName,
		Usage:   "Fitness plan client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			StatusCommand(),
			PlanCommand(),
			ProfileCommand(),
			ConfigCommand(),
			ShellCommand(),
			VersionCommand(),
		},
		Metadata: map[string]any{},
		Before:   before,
		After:    after,
		// Errors are reported by the caller; the shell must survive them.
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Configuration file (default ~/.fitplan/cli.yaml)",
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Fitness plan service URL (e.g., http://localhost:8000)",
		},
		&cli.StringFlag{
			Name:  "ca-file",
			Usage: "PEM bundle of extra CA certificates for https servers",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "Log format: text, json",
		},
		&cli.StringFlag{
			Name:  "credentials-backend",
			Usage: "Where the access token is kept: file, badger, memory",
		},
		&cli.StringFlag{
			Name:  "credentials-path",
			Usage: "Credentials file, or database directory for badger",
		},
	}
}

// flagOverrides collects the global flags that were set explicitly.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	for flag, key := range flagKeys {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}
	return overrides
}

// before builds the Runtime on the outermost run. Nested runs from the
// shell reuse it.
func before(c *cli.Context) error {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		rt.depth++
		return nil
	}

	rt, err := newRuntime(c)
	if err != nil {
		return err
	}
	c.App.Metadata[runtimeKey] = rt
	return nil
}

func after(c *cli.Context) error {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil
	}
	if rt.depth > 0 {
		rt.depth--
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	return rt.Close()
}

// describe turns errors a user can act on into hints.
func describe(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotAuthenticated):
		return errNotLoggedIn
	case domain.KindOf(err) == domain.KindTokenInvalid:
		return errSessionExpired
	}
	return err
}

// Main runs the application and returns the process exit code.
func Main(args []string, stderr io.Writer) int {
	if err := App().Run(args); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
