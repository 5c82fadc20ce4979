package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/yndnr/fitplan-go/internal/cli/config"
	"github.com/yndnr/fitplan-go/internal/cli/output"
)

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective configuration",
				Action: configShow,
			},
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[FILE]",
				Action:    configValidate,
			},
			{
				Name:   "path",
				Usage:  "Print the configuration file path",
				Action: configPath,
			},
			{
				Name:  "init",
				Usage: "Write a configuration file with default settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: configInit,
			},
		},
	}
}

// configShow prints the merged configuration with secrets masked. Tables
// make little sense for nested settings, so YAML is the default here.
func configShow(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}

	// Round trip through the yaml tags so keys and durations read the same
	// as in the file.
	raw, err := yaml.Marshal(config.Sanitize(rt.Config))
	if err != nil {
		return err
	}
	var settings map[string]any
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return err
	}

	format := rt.outputFormat(c)
	if format == output.FormatTable {
		format = output.FormatYAML
	}
	return output.NewFormatter(format).Format(rt.out, settings)
}

func configValidate(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	path := rt.ConfigPath
	if c.NArg() > 0 {
		path = config.ExpandHome(c.Args().First())
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		rt.Printf("No configuration file found at %s\n", path)
		rt.Printf("Using default settings.\n")
		return nil
	}
	if _, err := config.Load(path, nil); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	rt.Printf("✓ Configuration file is valid: %s\n", path)
	return nil
}

func configPath(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	rt.Printf("%s\n", rt.ConfigPath)
	return nil
}

func configInit(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	path := rt.ConfigPath
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists; use --force to overwrite", path)
	}
	if err := config.Save(config.Default(), path); err != nil {
		return err
	}
	rt.Printf("✓ Wrote %s\n", path)
	return nil
}
