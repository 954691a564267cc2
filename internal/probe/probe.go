package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/1broseidon/rawxcb"
	"github.com/1broseidon/rawxcb/internal/config"
	"github.com/1broseidon/rawxcb/internal/display"
	"github.com/1broseidon/rawxcb/internal/x11"
	"github.com/1broseidon/rawxcb/xcb"
)

// ErrNoBackend is returned when every selected backend failed.
var ErrNoBackend = errors.New("no backend could connect")

// NativeConn is a libxcb connection the prober owns for the duration of a
// run.
type NativeConn interface {
	rawxcb.AsRawConnection
	io.Closer
}

// XGBConn is the subset of the pure-Go client the prober uses.
type XGBConn interface {
	ServerInfo() x11.ServerInfo
	WindowManager() (string, error)
	GetCurrentDesktop() (int, error)
	GetDesktopCount() (int, error)
	GetMonitors() ([]x11.Monitor, error)
	ActiveMonitor(monitors []x11.Monitor) (int, error)
	Close()
}

type (
	NativeDialer func(display string) (NativeConn, error)
	XGBDialer    func(display string) (XGBConn, error)
	// NativeInspector reads diagnostics through a raw connection handle.
	NativeInspector func(c rawxcb.AsRawConnection) (*NativeReport, error)
)

// Options configures a Prober.
type Options struct {
	Backend  config.Backend
	Monitors bool
	Timeout  time.Duration
	Logger   *slog.Logger

	DialNative NativeDialer
	DialXGB    XGBDialer
	Inspect    NativeInspector
}

// Prober connects to an X display through one or both backends.
type Prober struct {
	backend    config.Backend
	monitors   bool
	timeout    time.Duration
	logger     *slog.Logger
	dialNative NativeDialer
	dialXGB    XGBDialer
	inspect    NativeInspector
}

// NewProber creates a prober, filling unset options with the real backends.
func NewProber(opts Options) *Prober {
	p := &Prober{
		backend:    opts.Backend,
		monitors:   opts.Monitors,
		timeout:    opts.Timeout,
		logger:     opts.Logger,
		dialNative: opts.DialNative,
		dialXGB:    opts.DialXGB,
		inspect:    opts.Inspect,
	}
	if p.backend == "" {
		p.backend = config.BackendAuto
	}
	if p.timeout <= 0 {
		p.timeout = 5 * time.Second
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.dialNative == nil {
		p.dialNative = dialNative
	}
	if p.dialXGB == nil {
		p.dialXGB = dialXGB
	}
	if p.inspect == nil {
		p.inspect = InspectNative
	}
	return p
}

// NewProberFromConfig builds a prober from the loaded configuration.
func NewProberFromConfig(cfg *config.Config, logger *slog.Logger) *Prober {
	return NewProber(Options{
		Backend:  cfg.Backend,
		Monitors: cfg.Probe.Monitors,
		Timeout:  cfg.GetProbeTimeout(),
		Logger:   logger,
	})
}

func dialNative(d string) (NativeConn, error) {
	conn, err := xcb.Connect(d)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func dialXGB(d string) (XGBConn, error) {
	conn, err := x11.NewConnection(d)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Run probes target with the configured backends. A backend that fails is
// recorded in the report; Run only errors when all of them failed.
func (p *Prober) Run(ctx context.Context, target display.Target) (*Report, error) {
	switch p.backend {
	case config.BackendAuto, config.BackendNative, config.BackendXGB:
	default:
		return nil, fmt.Errorf("unknown backend %q", p.backend)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	report := &Report{Target: target, Backend: p.backend}
	if name, err := display.Parse(target.Display); err == nil {
		report.Parsed = &name
	} else {
		p.logger.Warn("display string does not parse", "display", target.Display, "error", err)
	}

	var errs []error
	if p.backend == config.BackendAuto || p.backend == config.BackendNative {
		native, err := p.probeNative(ctx, target.Display)
		report.Native = native
		if err != nil {
			errs = append(errs, fmt.Errorf("native: %w", err))
		}
	}
	if p.backend == config.BackendAuto || p.backend == config.BackendXGB {
		xgbReport, err := p.probeXGB(ctx, target.Display)
		report.XGB = xgbReport
		if err != nil {
			errs = append(errs, fmt.Errorf("xgb: %w", err))
		}
	}

	report.compare()

	if report.nativeOK() || report.xgbOK() {
		return report, nil
	}
	return report, fmt.Errorf("%w: %w", ErrNoBackend, errors.Join(errs...))
}

func (p *Prober) probeNative(ctx context.Context, d string) (*NativeReport, error) {
	p.logger.Debug("connecting through libxcb", "display", d)

	conn, err := within(ctx, func() (NativeConn, error) { return p.dialNative(d) }, func(c NativeConn) { c.Close() })
	if err != nil {
		return &NativeReport{Error: err.Error()}, err
	}
	defer conn.Close()

	report, err := p.inspect(conn)
	if report == nil {
		report = &NativeReport{}
	}
	if s, ok := conn.(interface{ Screen() int }); ok {
		report.Screen = s.Screen()
	}
	if err != nil {
		report.Error = err.Error()
		return report, err
	}
	p.logger.Debug("native connection ok", "handle", report.Handle, "fd", report.FD)
	return report, nil
}

func (p *Prober) probeXGB(ctx context.Context, d string) (*XGBReport, error) {
	p.logger.Debug("connecting through xgb", "display", d)

	conn, err := within(ctx, func() (XGBConn, error) { return p.dialXGB(d) }, func(c XGBConn) { c.Close() })
	if err != nil {
		return &XGBReport{Error: err.Error()}, err
	}
	defer conn.Close()

	info := conn.ServerInfo()
	report := &XGBReport{Server: &info}

	if wm, err := conn.WindowManager(); err == nil {
		report.WindowManager = wm
	} else {
		p.logger.Debug("no EWMH window manager", "error", err)
	}
	if count, err := conn.GetDesktopCount(); err == nil {
		report.Desktops = count
		if cur, err := conn.GetCurrentDesktop(); err == nil {
			report.CurrentDesktop = &cur
		}
	}

	if p.monitors {
		if err := ctx.Err(); err != nil {
			report.MonitorError = err.Error()
			return report, nil
		}
		monitors, err := conn.GetMonitors()
		if err != nil {
			p.logger.Warn("monitor query failed", "error", err)
			report.MonitorError = err.Error()
		} else {
			report.Monitors = monitors
			if id, err := conn.ActiveMonitor(monitors); err == nil {
				report.ActiveMonitor = &id
			}
		}
	}
	return report, nil
}

// InspectNative reads the handle address, socket and setup data of any
// connection implementing the capability.
func InspectNative(c rawxcb.AsRawConnection) (*NativeReport, error) {
	handle, err := rawxcb.Require(c)
	if err != nil {
		return nil, err
	}
	report := &NativeReport{Handle: fmt.Sprintf("%#x", rawxcb.Addr(handle)), FD: -1}

	if err := xcb.CheckConnection(c); err != nil {
		return report, err
	}
	fd, err := xcb.FileDescriptor(c)
	if err != nil {
		return report, err
	}
	report.FD = fd

	setup, err := xcb.QuerySetup(c)
	if err != nil {
		return report, err
	}
	report.Setup = &setup
	return report, nil
}

// within runs fn but gives up when ctx ends first. A result that arrives
// after that is passed to cleanup.
func within[T any](ctx context.Context, fn func() (T, error), cleanup func(T)) (T, error) {
	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn()
		done <- result{v, err}
	}()

	select {
	case r := <-done:
		return r.val, r.err
	case <-ctx.Done():
		go func() {
			if r := <-done; r.err == nil {
				cleanup(r.val)
			}
		}()
		var zero T
		return zero, ctx.Err()
	}
}
