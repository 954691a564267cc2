package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/rawxcb/internal/config"
	"github.com/1broseidon/rawxcb/internal/display"
	"github.com/1broseidon/rawxcb/internal/probe"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "probe":
		os.Exit(runProbe(os.Args[2:]))
	case "display":
		os.Exit(runDisplay(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: xcbprobe <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  probe               Connect to an X display and report what both backends see")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  display parse       Parse a display string")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config init         Write the default configuration")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'xcbprobe <command> --help' for command-specific options.")
}

func runProbe(args []string) int {
	fs := flag.NewFlagSet("probe", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	displayName := fs.String("display", "", "X display (default: $DISPLAY, config, login session, local socket)")
	backend := fs.String("backend", "", "Backend: auto, native or xgb (default: config)")
	format := fs.String("format", "", "Output format: text, yaml or json (default: text on a terminal, yaml otherwise)")
	verbose := fs.Bool("verbose", false, "Enable debug logging")
	path := fs.String("path", "", "Config file path (default: ~/.config/xcbprobe/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: xcbprobe probe [--display NAME] [--backend auto|native|xgb] [--format text|yaml|json] [--verbose]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Connect through libxcb and the pure-Go client and compare what the server reports.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "probe takes no arguments, got %q\n", fs.Args())
		return 2
	}

	outFormat, err := resolveFormat(*format, term.IsTerminal(int(os.Stdout.Fd())))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	if *backend != "" {
		cfg.Backend = config.Backend(*backend)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	logger := newLogger(os.Stderr, cfg.GetLogLevel(), *verbose)

	target, err := display.Resolve(*displayName, cfg, os.Environ())
	if err != nil {
		logger.Error("cannot resolve display", "error", err)
		return 1
	}
	if err := target.Apply(); err != nil {
		logger.Error("cannot export display environment", "error", err)
		return 1
	}
	logger.Debug("resolved display",
		"display", target.Display,
		"source", target.DisplaySource,
		"xauthority", target.XAuthority,
		"xauthority_source", target.XAuthoritySource,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, runErr := probe.NewProberFromConfig(cfg, logger).Run(ctx, target)
	if report != nil {
		if err := writeReport(os.Stdout, report, outFormat); err != nil {
			logger.Error("failed to write report", "error", err)
			return 1
		}
	}
	if runErr != nil {
		logger.Error("probe failed", "display", target.Display, "error", runErr)
		return 1
	}
	return 0
}

func runDisplay(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  xcbprobe display parse [--format text|yaml|json] <name>")
		return 2
	}

	switch args[0] {
	case "parse":
		fs := flag.NewFlagSet("parse", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		format := fs.String("format", "", "Output format: text, yaml or json")
		if err := fs.Parse(args[1:]); err != nil {
			if err == flag.ErrHelp {
				return 0
			}
			return 2
		}
		if fs.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "parse requires exactly one <name>")
			return 2
		}
		outFormat, err := resolveFormat(*format, term.IsTerminal(int(os.Stdout.Fd())))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}

		name, err := display.Parse(fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if err := writeName(os.Stdout, name, outFormat); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown display subcommand: %s\n", args[0])
		return 2
	}
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  xcbprobe config init [--path PATH] [--force]")
		fmt.Fprintln(os.Stderr, "  xcbprobe config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  xcbprobe config print [--path PATH] [--defaults] [--sources]")
		return 2
	}

	switch args[0] {
	case "init":
		fs := flag.NewFlagSet("init", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/xcbprobe/config.yaml)")
		force := fs.Bool("force", false, "Overwrite an existing file")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		written, err := initConfig(*path, *force)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("config: wrote %s\n", written)
		return 0

	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/xcbprobe/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/xcbprobe/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printSources := fs.Bool("sources", false, "Annotate where each value was set")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		res := &config.LoadResult{Config: config.DefaultConfig()}
		if !*printDefaults {
			var err error
			res, err = loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
		}
		if err := writeConfig(os.Stdout, res, *printSources); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}
	return config.LoadFromPath(path)
}

// initConfig writes the default configuration to path and returns where it
// went. An existing file is kept unless force is set.
func initConfig(path string, force bool) (string, error) {
	if path == "" {
		var err error
		path, err = config.DefaultConfigPath()
		if err != nil {
			return "", err
		}
	}
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
		}
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return "", err
	}
	return path, nil
}

// newLogger returns a text logger on w; verbose forces debug level.
func newLogger(w io.Writer, level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func writeConfig(w io.Writer, res *config.LoadResult, withSources bool) error {
	if len(res.Files) == 0 {
		fmt.Fprintln(w, "# source: defaults")
	}
	for _, f := range res.Files {
		fmt.Fprintf(w, "# source: %s\n", f)
	}
	if withSources {
		for _, key := range sortedKeys(res.Sources) {
			src := res.Sources[key]
			fmt.Fprintf(w, "# %s: %s:%d:%d\n", key, src.File, src.Line, src.Column)
		}
	}
	data, err := yaml.Marshal(res.Config)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
