package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/1broseidon/rawxcb/internal/config"
	"github.com/1broseidon/rawxcb/internal/display"
	"github.com/1broseidon/rawxcb/internal/probe"
)

const (
	ServerName    = "xcbprobe"
	ServerVersion = "0.1.0"
)

// Server exposes display probing to MCP clients.
type Server struct {
	mcpServer *mcpsdk.Server
	config    *config.Config
	logger    *slog.Logger

	// XAUTHORITY is process-wide; one probe exports and dials at a time.
	probeMu sync.Mutex

	// Hooks for tests.
	newProberFn func(cfg *config.Config, logger *slog.Logger) *probe.Prober
	environFn   func() []string
	applyFn     func(display.Target) error
}

// NewServer creates a new MCP server using cfg for defaults. The process
// environment is captured here; later tool calls resolve against that copy.
func NewServer(cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	environ := os.Environ()
	s := &Server{
		config:      cfg,
		logger:      logger,
		newProberFn: probe.NewProberFromConfig,
		environFn:   func() []string { return environ },
		applyFn:     display.Target.ApplyXAuthority,
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport, blocking until done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "probe_display",
		Description: "Connect to an X display through libxcb and the pure-Go xgb client, report the raw connection handle, server setup, window manager and monitors, and whether both backends agree.",
	}, s.handleProbeDisplay)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "parse_display",
		Description: "Parse an X display string into protocol, host, display and screen, with the unix socket path or TCP port a client would use.",
	}, s.handleParseDisplay)
}

func (s *Server) handleProbeDisplay(ctx context.Context, _ *mcpsdk.CallToolRequest, args ProbeDisplayInput) (*mcpsdk.CallToolResult, probe.Report, error) {
	cfg := *s.config
	if args.Backend != "" {
		cfg.Backend = config.Backend(args.Backend)
	}
	if args.Monitors != nil {
		cfg.Probe.Monitors = *args.Monitors
	}
	if err := cfg.Validate(); err != nil {
		return nil, probe.Report{}, err
	}

	target, err := display.Resolve(args.Display, &cfg, s.environFn())
	if err != nil {
		return nil, probe.Report{}, err
	}

	s.probeMu.Lock()
	defer s.probeMu.Unlock()
	if err := s.applyFn(target); err != nil {
		return nil, probe.Report{}, err
	}

	s.logger.Info("probe_display", "display", target.Display, "source", target.DisplaySource, "backend", cfg.Backend)

	report, err := s.newProberFn(&cfg, s.logger).Run(ctx, target)
	if err != nil {
		return nil, probe.Report{}, fmt.Errorf("probe %s: %w", target.Display, err)
	}
	return nil, *report, nil
}

func (s *Server) handleParseDisplay(_ context.Context, _ *mcpsdk.CallToolRequest, args ParseDisplayInput) (*mcpsdk.CallToolResult, ParseDisplayOutput, error) {
	name, err := display.Parse(args.Name)
	if err != nil {
		return nil, ParseDisplayOutput{}, err
	}
	out := ParseDisplayOutput{
		Protocol:   name.Protocol,
		Host:       name.Host,
		Display:    name.Display,
		Screen:     name.Screen,
		Canonical:  name.String(),
		Local:      name.Local(),
		SocketPath: name.SocketPath(),
	}
	if !out.Local {
		out.TCPPort = name.TCPPort()
	}
	return nil, out, nil
}
