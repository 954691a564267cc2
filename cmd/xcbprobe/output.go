package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/rawxcb/internal/display"
	"github.com/1broseidon/rawxcb/internal/probe"
)

const (
	formatText = "text"
	formatYAML = "yaml"
	formatJSON = "json"
)

// resolveFormat picks the output format: an explicit choice wins, otherwise
// text for terminals and YAML for pipes.
func resolveFormat(flagValue string, isTTY bool) (string, error) {
	switch strings.ToLower(strings.TrimSpace(flagValue)) {
	case "":
		if isTTY {
			return formatText, nil
		}
		return formatYAML, nil
	case formatText:
		return formatText, nil
	case formatYAML, "yml":
		return formatYAML, nil
	case formatJSON:
		return formatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, yaml or json)", flagValue)
	}
}

func writeStructured(w io.Writer, v any, format string) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func writeReport(w io.Writer, r *probe.Report, format string) error {
	if format != formatText {
		return writeStructured(w, r, format)
	}

	fmt.Fprintf(w, "display:     %s (%s)\n", r.Target.Display, r.Target.DisplaySource)
	if r.Target.XAuthority != "" {
		fmt.Fprintf(w, "xauthority:  %s (%s)\n", r.Target.XAuthority, r.Target.XAuthoritySource)
	}
	if r.Parsed != nil {
		fmt.Fprintf(w, "transport:   %s\n", describeTransport(*r.Parsed))
	}
	fmt.Fprintf(w, "backend:     %s\n", r.Backend)

	if n := r.Native; n != nil {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "native (libxcb):")
		if n.Handle != "" {
			fmt.Fprintf(w, "  handle:    %s\n", n.Handle)
		}
		if n.Error != "" {
			fmt.Fprintf(w, "  error:     %s\n", n.Error)
		}
		if n.Setup != nil {
			fmt.Fprintf(w, "  fd:        %d\n", n.FD)
			fmt.Fprintf(w, "  screen:    %d\n", n.Screen)
			fmt.Fprintf(w, "  vendor:    %s (release %d)\n", n.Setup.Vendor, n.Setup.Release)
			fmt.Fprintf(w, "  protocol:  %d.%d\n", n.Setup.ProtocolMajor, n.Setup.ProtocolMinor)
			for i, s := range n.Setup.Screens {
				fmt.Fprintf(w, "  screen %d:  %dx%d root %#x\n", i, s.Width, s.Height, s.Root)
			}
		}
	}

	if x := r.XGB; x != nil {
		fmt.Fprintln(w, "")
		fmt.Fprintln(w, "xgb:")
		if x.Error != "" {
			fmt.Fprintf(w, "  error:     %s\n", x.Error)
		}
		if s := x.Server; s != nil {
			fmt.Fprintf(w, "  vendor:    %s (release %d)\n", s.Vendor, s.Release)
			fmt.Fprintf(w, "  protocol:  %d.%d\n", s.ProtocolMajor, s.ProtocolMinor)
			fmt.Fprintf(w, "  default:   screen %d\n", s.DefaultScreen)
			for i, sc := range s.Screens {
				fmt.Fprintf(w, "  screen %d:  %dx%d root %#x\n", i, sc.Width, sc.Height, sc.Root)
			}
		}
		if x.WindowManager != "" {
			fmt.Fprintf(w, "  wm:        %s\n", x.WindowManager)
		}
		if x.Desktops > 0 {
			if x.CurrentDesktop != nil {
				fmt.Fprintf(w, "  desktops:  %d (current %d)\n", x.Desktops, *x.CurrentDesktop)
			} else {
				fmt.Fprintf(w, "  desktops:  %d\n", x.Desktops)
			}
		}
		if x.MonitorError != "" {
			fmt.Fprintf(w, "  monitors:  %s\n", x.MonitorError)
		}
		for _, m := range x.Monitors {
			var tags []string
			if m.Primary {
				tags = append(tags, "primary")
			}
			if x.ActiveMonitor != nil && *x.ActiveMonitor == m.ID {
				tags = append(tags, "active")
			}
			line := fmt.Sprintf("  monitor %d: %s %dx%d+%d+%d", m.ID, m.Name, m.Width, m.Height, m.X, m.Y)
			if len(tags) > 0 {
				line += " [" + strings.Join(tags, ",") + "]"
			}
			fmt.Fprintln(w, line)
		}
	}

	if r.Agree != nil {
		fmt.Fprintln(w, "")
		if *r.Agree {
			fmt.Fprintln(w, "backends agree")
		} else {
			fmt.Fprintln(w, "backends disagree:")
			for _, m := range r.Mismatches {
				fmt.Fprintf(w, "  %s\n", m)
			}
		}
	}
	return nil
}

type nameOutput struct {
	display.Name `yaml:",inline"`
	Canonical    string `json:"canonical" yaml:"canonical"`
	Local        bool   `json:"local" yaml:"local"`
	SocketPath   string `json:"socket_path,omitempty" yaml:"socket_path,omitempty"`
	TCPPort      int    `json:"tcp_port,omitempty" yaml:"tcp_port,omitempty"`
}

func writeName(w io.Writer, n display.Name, format string) error {
	if format != formatText {
		out := nameOutput{Name: n, Canonical: n.String(), Local: n.Local(), SocketPath: n.SocketPath()}
		if !out.Local {
			out.TCPPort = n.TCPPort()
		}
		return writeStructured(w, out, format)
	}

	fmt.Fprintf(w, "canonical:   %s\n", n.String())
	if n.Protocol != "" {
		fmt.Fprintf(w, "protocol:    %s\n", n.Protocol)
	}
	if n.Host != "" {
		fmt.Fprintf(w, "host:        %s\n", n.Host)
	}
	fmt.Fprintf(w, "display:     %d\n", n.Display)
	fmt.Fprintf(w, "screen:      %d\n", n.Screen)
	fmt.Fprintf(w, "transport:   %s\n", describeTransport(n))
	return nil
}

func describeTransport(n display.Name) string {
	if n.Local() {
		return "unix " + n.SocketPath()
	}
	host := n.Host
	if strings.Contains(host, ":") {
		host = "[" + host + "]"
	}
	return fmt.Sprintf("tcp %s:%d", host, n.TCPPort())
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
