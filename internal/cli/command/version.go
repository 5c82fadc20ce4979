package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/fitplan-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "short",
				Usage: "Print the version number only",
			},
		},
		Action: func(c *cli.Context) error {
			rt, err := runtimeFrom(c)
			if err != nil {
				return err
			}
			if c.Bool("short") {
				rt.Printf("%s\n", buildinfo.Version)
				return nil
			}
			return rt.Print(c, buildinfo.Get())
		},
	}
}
