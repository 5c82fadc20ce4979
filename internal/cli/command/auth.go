package command

import (
	"context"
	"errors"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fitplan-go/internal/core/service"
)

func credentialFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "username",
			Aliases: []string{"u"},
			Usage:   "Username (or pass it as the argument after all flags)",
		},
		&cli.StringFlag{
			Name:    "password",
			Aliases: []string{"p"},
			Usage:   "Password (prompted for when omitted)",
		},
		&cli.BoolFlag{
			Name:  "password-stdin",
			Usage: "Read the password from the first line of stdin",
		},
	}
}

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Log in and remember the session",
		ArgsUsage: "[flags] [USERNAME]",
		Flags:     credentialFlags(),
		Before:    initSession,
		Action: func(c *cli.Context) error {
			return authenticate(c, "logged in as %s\n", (*service.SessionService).Login)
		},
	}
}

// RegisterCommand returns the register command.
func RegisterCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Aliases:   []string{"signup"},
		Usage:     "Create an account and log in",
		ArgsUsage: "[flags] [USERNAME]",
		Flags:     credentialFlags(),
		Before:    initSession,
		Action: func(c *cli.Context) error {
			return authenticate(c, "registered and logged in as %s\n", (*service.SessionService).Register)
		},
	}
}

type exchangeFunc func(s *service.SessionService, ctx context.Context, username, password string) error

func authenticate(c *cli.Context, done string, exchange exchangeFunc) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	username, password, err := readCredentials(c, rt)
	if err != nil {
		return err
	}
	if err := exchange(rt.Session, c.Context, username, password); err != nil {
		return err
	}
	rt.Printf(done, rt.Session.User().Username)
	return nil
}

// errFlagsAfterUsername is returned when flags follow the username. Flag
// parsing stops at the first argument, so they would be taken as arguments.
var errFlagsAfterUsername = errors.New("too many arguments; flags go before USERNAME, e.g. `login -p PASSWORD USERNAME`")

// readCredentials takes the username and password from flags or arguments
// and prompts for whatever is missing.
func readCredentials(c *cli.Context, rt *Runtime) (string, string, error) {
	if c.NArg() > 1 {
		for _, arg := range c.Args().Tail() {
			if strings.HasPrefix(arg, "-") {
				return "", "", errFlagsAfterUsername
			}
		}
		return "", "", errors.New("too many arguments")
	}
	username := c.String("username")
	if username == "" {
		username = c.Args().First()
	}

	var err error
	if username == "" {
		if username, err = rt.prompt("Username: "); err != nil {
			return "", "", err
		}
	}

	password := c.String("password")
	switch {
	case c.Bool("password-stdin"):
		if password != "" {
			return "", "", errors.New("--password and --password-stdin are mutually exclusive")
		}
		password, err = rt.readLine()
	case password == "":
		password, err = rt.prompt("Password: ")
	}
	if err != nil {
		return "", "", err
	}
	return strings.TrimSpace(username), password, nil
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Forget the session",
		Before: openSession,
		Action: func(c *cli.Context) error {
			rt, err := runtimeFrom(c)
			if err != nil {
				return err
			}
			if err := rt.Session.Logout(c.Context); err != nil {
				rt.Log.Warn("failed to clear stored credentials", "error", err)
			}
			rt.Printf("logged out\n")
			return nil
		},
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the logged-in user",
		Before: requireLogin,
		Action: func(c *cli.Context) error {
			rt, err := runtimeFrom(c)
			if err != nil {
				return err
			}
			user := rt.Session.User()
			if user == nil {
				return errNotLoggedIn
			}
			return rt.Print(c, user)
		},
	}
}

type statusView struct {
	State    string `json:"state"`
	Username string `json:"username,omitempty"`
	Loading  bool   `json:"loading"`
	Decision string `json:"decision"`
	Server   string `json:"server"`
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the session state",
		Before: initSession,
		Action: func(c *cli.Context) error {
			rt, err := runtimeFrom(c)
			if err != nil {
				return err
			}
			snap := rt.Session.Snapshot()
			view := statusView{
				State:    snap.State.String(),
				Loading:  snap.IsLoading,
				Decision: service.Decide(snap).Decision.String(),
				Server:   rt.Config.Server.URL,
			}
			if snap.User != nil {
				view.Username = snap.User.Username
			}
			return rt.Print(c, view)
		},
	}
}
