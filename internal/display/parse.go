package display

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Name is a parsed X display string of the form
// [protocol/][host]:display[.screen].
type Name struct {
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Host     string `json:"host,omitempty" yaml:"host,omitempty"`
	Display  int    `json:"display" yaml:"display"`
	Screen   int    `json:"screen" yaml:"screen"`
}

// Parse splits a display string the way libxcb does: the last colon
// separates host from display number, an optional ".screen" follows, and a
// slash in the host part introduces a protocol. IPv6 hosts may be bracketed.
func Parse(name string) (Name, error) {
	var n Name
	if name == "" {
		return n, fmt.Errorf("empty display name")
	}

	colon := strings.LastIndexByte(name, ':')
	if colon < 0 {
		return n, fmt.Errorf("display %q: missing ':'", name)
	}

	num, screen, hasScreen := strings.Cut(name[colon+1:], ".")
	d, err := strconv.ParseUint(num, 10, 31)
	if err != nil {
		return n, fmt.Errorf("display %q: invalid display number %q", name, num)
	}
	n.Display = int(d)
	if hasScreen {
		s, err := strconv.ParseUint(screen, 10, 31)
		if err != nil {
			return n, fmt.Errorf("display %q: invalid screen number %q", name, screen)
		}
		n.Screen = int(s)
	}

	host := name[:colon]
	if slash := strings.LastIndexByte(host, '/'); slash >= 0 {
		n.Protocol = host[:slash]
		host = host[slash+1:]
	}
	if strings.HasPrefix(host, "[") && strings.HasSuffix(host, "]") {
		host = host[1 : len(host)-1]
	} else if strings.HasSuffix(host, ":") && !strings.Contains(host[:len(host)-1], ":") {
		return n, fmt.Errorf("display %q: DECnet addresses are not supported", name)
	}
	n.Host = host

	return n, nil
}

// Local reports whether the display is reached through a unix socket.
func (n Name) Local() bool {
	if n.Protocol != "" {
		return n.Protocol == "unix"
	}
	return n.Host == "" || n.Host == "unix"
}

// SocketPath returns the unix socket of a local display, or "" for TCP.
func (n Name) SocketPath() string {
	if !n.Local() {
		return ""
	}
	return filepath.Join(SocketDir, "X"+strconv.Itoa(n.Display))
}

// TCPPort returns the TCP port of the display (6000 + display number).
func (n Name) TCPPort() int {
	return 6000 + n.Display
}

func (n Name) String() string {
	var b strings.Builder
	if n.Protocol != "" {
		b.WriteString(n.Protocol)
		b.WriteByte('/')
	}
	if strings.Contains(n.Host, ":") {
		b.WriteString("[" + n.Host + "]")
	} else {
		b.WriteString(n.Host)
	}
	fmt.Fprintf(&b, ":%d.%d", n.Display, n.Screen)
	return b.String()
}
