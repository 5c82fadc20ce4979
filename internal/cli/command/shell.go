package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fitplan-go/internal/cli/config"
	"github.com/yndnr/fitplan-go/internal/cli/output"
	"github.com/yndnr/fitplan-go/internal/cli/repl"
	"github.com/yndnr/fitplan-go/internal/infra/confloader"
	"github.com/yndnr/fitplan-go/internal/infra/shutdown"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
)

const shellShutdownTimeout = 5 * time.Second

var errNestedShell = errors.New("already in a shell")

// ShellCommand returns the interactive shell command.
func ShellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Run commands interactively with one shared session",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve Prometheus metrics on this address (e.g., 127.0.0.1:9464)",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not load or save command history",
			},
		},
		Before: initSession,
		Action: runShell,
	}
}

func runShell(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	if rt.depth > 0 {
		return errNestedShell
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	h := shutdown.NewHandler(shellShutdownTimeout)

	historyFile := rt.Config.Shell.HistoryFile
	if c.Bool("no-history") {
		historyFile = ""
	}
	history := repl.NewHistory(historyFile, repl.DefaultHistorySize)
	if err := history.Load(); err != nil {
		rt.Log.Warn("failed to load shell history", "file", historyFile, "error", err)
	}
	h.OnShutdown(func(context.Context) error { return history.Save() })

	addr := rt.Config.Shell.MetricsAddr
	if c.IsSet("metrics-addr") {
		addr = c.String("metrics-addr")
	}
	if addr != "" {
		srv, err := serveMetrics(rt, addr)
		if err != nil {
			return err
		}
		h.OnShutdown(srv.Shutdown)
	}

	if w, err := watchConfig(rt); err != nil {
		rt.Log.Debug("config hot reload disabled", "path", rt.ConfigPath, "error", err)
	} else {
		h.OnShutdown(func(context.Context) error { return w.Stop() })
	}

	r := repl.New(
		func(ctx context.Context, args []string) error {
			return c.App.RunContext(ctx, append([]string{AppName}, args...))
		},
		repl.WithIO(rt.in, rt.out),
		repl.WithCompleter(repl.NewCompleter(commandNames(c.App.Commands)...)),
		repl.WithHistory(history),
	)

	if user := rt.Session.User(); user != nil {
		rt.Printf("logged in as %s; type \"exit\" to leave\n", user.Username)
	} else {
		rt.Printf("not logged in; type \"login\" to start or \"exit\" to leave\n")
	}

	replDone := make(chan error, 1)
	go func() { replDone <- r.Run(ctx) }()
	waitDone := make(chan error, 1)
	go func() {
		_, err := h.Wait(ctx)
		waitDone <- err
	}()

	var runErr error
	select {
	case runErr = <-replDone:
		cancel()
	case <-h.Done():
		// Interrupted. The reader goroutine stays blocked until exit.
		cancel()
		fmt.Fprintln(rt.out)
	}
	if err := <-waitDone; err != nil {
		rt.Log.Warn("shell shutdown", "error", err)
	}
	if errors.Is(runErr, context.Canceled) {
		return nil
	}
	return runErr
}

// commandNames lists every command and "command subcommand" pair.
func commandNames(cmds []*cli.Command) []string {
	var names []string
	for _, cmd := range cmds {
		if cmd.Hidden {
			continue
		}
		names = append(names, cmd.Name)
		for _, sub := range commandNames(cmd.Subcommands) {
			names = append(names, cmd.Name+" "+sub)
		}
	}
	return names
}

func serveMetrics(rt *Runtime, addr string) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", rt.Metrics.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.Log.Error("metrics server stopped", "error", err)
		}
	}()
	fmt.Fprintf(rt.errOut, "metrics on http://%s/metrics\n", ln.Addr())
	return srv, nil
}

// watchConfig reloads the log level and output format when the config file
// changes. Other settings apply from the next start.
func watchConfig(rt *Runtime) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(rt.Log.With("component", "confwatch")))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(rt.ConfigPath); err != nil {
		w.Stop()
		return nil, err
	}
	w.OnChange(func(path string) {
		cfg, err := config.Load(path, rt.flags)
		if err != nil {
			rt.Log.Warn("ignoring invalid configuration", "path", path, "error", err)
			return
		}
		logger.SetLevel(cfg.Log.Level)
		if f, err := output.ParseFormat(cfg.Output); err == nil {
			rt.SetOutput(f)
		}
		rt.Log.Info("configuration reloaded", "path", path)
	})
	w.StartAsync()
	return w, nil
}
