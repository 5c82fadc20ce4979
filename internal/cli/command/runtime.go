package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/fitplan-go/internal/cli/config"
	"github.com/yndnr/fitplan-go/internal/cli/connection"
	"github.com/yndnr/fitplan-go/internal/cli/output"
	"github.com/yndnr/fitplan-go/internal/core/domain"
	"github.com/yndnr/fitplan-go/internal/core/service"
	"github.com/yndnr/fitplan-go/internal/infra/buildinfo"
	"github.com/yndnr/fitplan-go/internal/infra/tlsroots"
	"github.com/yndnr/fitplan-go/internal/storage"
	"github.com/yndnr/fitplan-go/internal/telemetry/logger"
	"github.com/yndnr/fitplan-go/internal/telemetry/metric"
)

const runtimeKey = "runtime"

// Runtime holds everything commands share during one invocation.
type Runtime struct {
	Config     *config.CLIConfig
	ConfigPath string
	Log        logger.Logger
	Metrics    *metric.Registry

	// Set by open.
	Session  *service.SessionService
	Gate     *service.Gate
	Plans    *service.PlanService
	Profiles *service.ProfileService

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	flags  map[string]any

	mu     sync.RWMutex
	format output.Format

	store storage.Store
	depth int
}

func newRuntime(c *cli.Context) (*Runtime, error) {
	path := c.String("config")
	if path == "" {
		path = config.DefaultConfigPath()
	}
	path = config.ExpandHome(path)

	flags := flagOverrides(c)
	cfg, err := config.Load(path, flags)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.App.ErrWriter,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}
	logger.SetDefault(log)

	return &Runtime{
		Config:     cfg,
		ConfigPath: path,
		Log:        log,
		Metrics:    metric.NewRegistry(),
		in:         bufio.NewReader(c.App.Reader),
		out:        c.App.Writer,
		errOut:     c.App.ErrWriter,
		flags:      flags,
		format:     format,
	}, nil
}

// runtimeFrom returns the Runtime built by the app's Before hook.
func runtimeFrom(c *cli.Context) (*Runtime, error) {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

// open wires the credential store, gateways and services. It is a no-op
// after the first call.
func (rt *Runtime) open() error {
	if rt.Session != nil {
		return nil
	}

	cfg := rt.Config
	store, err := storage.Open(storage.Config{
		Backend:       cfg.Credentials.Backend,
		Path:          cfg.Credentials.Path,
		EncryptionKey: cfg.Credentials.EncryptionKey,
		Cipher:        cfg.Credentials.Cipher,
	}, rt.Log.With("component", "storage"))
	if err != nil {
		return fmt.Errorf("open credentials: %w", err)
	}

	roots, err := tlsroots.Load(cfg.Server.CAFile)
	if err != nil {
		store.Close()
		return err
	}
	opts := []connection.Option{
		connection.WithTimeout(cfg.Server.Timeout),
		connection.WithRateLimit(cfg.Gateway.RateLimit, cfg.Gateway.Burst),
		connection.WithMetrics(rt.Metrics),
		connection.WithLogger(rt.Log.With("component", "gateway")),
		connection.WithUserAgent(buildinfo.UserAgent()),
	}
	if roots != nil {
		opts = append(opts, connection.WithTLSConfig(roots.TLSConfig()))
	}
	client := connection.NewHTTPClient(cfg.Server.URL, opts...)

	rt.store = store
	rt.Session = service.NewSessionService(store, connection.NewAuthGateway(client),
		service.WithLogger(rt.Log.With("component", "session")),
		service.WithMetrics(rt.Metrics),
	)
	rt.Gate = service.NewGate(rt.Session)
	rt.Plans = service.NewPlanService(rt.Session, connection.NewPlanGateway(client))
	rt.Profiles = service.NewProfileService(rt.Session, connection.NewProfileGateway(client))
	return nil
}

// Close releases the credential store.
func (rt *Runtime) Close() error {
	if rt.store == nil {
		return nil
	}
	err := rt.store.Close()
	rt.store = nil
	return err
}

// SetOutput changes the default output format.
func (rt *Runtime) SetOutput(f output.Format) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.format = f
}

// outputFormat prefers an --output flag given to this very invocation.
func (rt *Runtime) outputFormat(c *cli.Context) output.Format {
	if c != nil && c.IsSet("output") {
		if f, err := output.ParseFormat(c.String("output")); err == nil {
			return f
		}
	}
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.format
}

// Print renders data in the selected output format.
func (rt *Runtime) Print(c *cli.Context, data any) error {
	return output.NewFormatter(rt.outputFormat(c)).Format(rt.out, data)
}

// Printf writes a plain message to the output.
func (rt *Runtime) Printf(format string, args ...any) {
	fmt.Fprintf(rt.out, format, args...)
}

// prompt asks for one line of input on stderr.
func (rt *Runtime) prompt(label string) (string, error) {
	fmt.Fprint(rt.errOut, label)
	return rt.readLine()
}

func (rt *Runtime) readLine() (string, error) {
	line, err := rt.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("unexpected end of input")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// openSession wires the session without restoring it.
func openSession(c *cli.Context) error {
	rt, err := runtimeFrom(c)
	if err != nil {
		return err
	}
	return rt.open()
}

// initSession restores the session before a command runs.
func initSession(c *cli.Context) error {
	if err := openSession(c); err != nil {
		return err
	}
	rt, _ := runtimeFrom(c)
	rt.Session.Initialize(c.Context)
	return nil
}

// requireLogin is the Before hook of protected commands.
func requireLogin(c *cli.Context) error {
	if err := initSession(c); err != nil {
		return err
	}
	rt, _ := runtimeFrom(c)
	if err := rt.Gate.Require(c.Context); err != nil {
		return describe(err)
	}
	return nil
}

// protected reports a token rejected mid-command as an expired session.
func protected(err error) error {
	if domain.KindOf(err) == domain.KindTokenInvalid || errors.Is(err, domain.ErrNotAuthenticated) {
		return describe(err)
	}
	return err
}
