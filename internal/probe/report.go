package probe

import (
	"fmt"

	"github.com/1broseidon/rawxcb/internal/config"
	"github.com/1broseidon/rawxcb/internal/display"
	"github.com/1broseidon/rawxcb/internal/x11"
	"github.com/1broseidon/rawxcb/xcb"
)

// Report is the result of one probe run.
type Report struct {
	Target     display.Target `json:"target" yaml:"target"`
	Parsed     *display.Name  `json:"parsed,omitempty" yaml:"parsed,omitempty"`
	Backend    config.Backend `json:"backend" yaml:"backend"`
	Native     *NativeReport  `json:"native,omitempty" yaml:"native,omitempty"`
	XGB        *XGBReport     `json:"xgb,omitempty" yaml:"xgb,omitempty"`
	Agree      *bool          `json:"agree,omitempty" yaml:"agree,omitempty"`
	Mismatches []string       `json:"mismatches,omitempty" yaml:"mismatches,omitempty"`
}

// NativeReport describes the libxcb side.
type NativeReport struct {
	Handle string     `json:"handle,omitempty" yaml:"handle,omitempty"`
	FD     int        `json:"fd" yaml:"fd"`
	Screen int        `json:"screen" yaml:"screen"`
	Setup  *xcb.Setup `json:"setup,omitempty" yaml:"setup,omitempty"`
	Error  string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// XGBReport describes the pure-Go side.
type XGBReport struct {
	Server         *x11.ServerInfo `json:"server,omitempty" yaml:"server,omitempty"`
	WindowManager  string          `json:"window_manager,omitempty" yaml:"window_manager,omitempty"`
	Desktops       int             `json:"desktops,omitempty" yaml:"desktops,omitempty"`
	CurrentDesktop *int            `json:"current_desktop,omitempty" yaml:"current_desktop,omitempty"`
	Monitors       []x11.Monitor   `json:"monitors,omitempty" yaml:"monitors,omitempty"`
	ActiveMonitor  *int            `json:"active_monitor,omitempty" yaml:"active_monitor,omitempty"`
	MonitorError   string          `json:"monitor_error,omitempty" yaml:"monitor_error,omitempty"`
	Error          string          `json:"error,omitempty" yaml:"error,omitempty"`
}

func (r *Report) nativeOK() bool {
	return r.Native != nil && r.Native.Error == "" && r.Native.Setup != nil
}

func (r *Report) xgbOK() bool {
	return r.XGB != nil && r.XGB.Error == "" && r.XGB.Server != nil
}

// compare sets Agree when both backends connected, listing what differs.
func (r *Report) compare() {
	if !r.nativeOK() || !r.xgbOK() {
		return
	}
	n, x := r.Native.Setup, r.XGB.Server

	var diffs []string
	if n.Vendor != x.Vendor {
		diffs = append(diffs, fmt.Sprintf("vendor: %q != %q", n.Vendor, x.Vendor))
	}
	if n.Release != x.Release {
		diffs = append(diffs, fmt.Sprintf("release: %d != %d", n.Release, x.Release))
	}
	if n.ProtocolMajor != x.ProtocolMajor || n.ProtocolMinor != x.ProtocolMinor {
		diffs = append(diffs, fmt.Sprintf("protocol: %d.%d != %d.%d", n.ProtocolMajor, n.ProtocolMinor, x.ProtocolMajor, x.ProtocolMinor))
	}
	if len(n.Screens) != len(x.Screens) {
		diffs = append(diffs, fmt.Sprintf("screens: %d != %d", len(n.Screens), len(x.Screens)))
	} else {
		for i := range n.Screens {
			a, b := n.Screens[i], x.Screens[i]
			if a.Root != b.Root || a.Width != b.Width || a.Height != b.Height {
				diffs = append(diffs, fmt.Sprintf("screen %d: %dx%d root %#x != %dx%d root %#x", i, a.Width, a.Height, a.Root, b.Width, b.Height, b.Root))
			}
		}
	}
	if r.Native.Screen != x.DefaultScreen {
		diffs = append(diffs, fmt.Sprintf("default screen: %d != %d", r.Native.Screen, x.DefaultScreen))
	}

	agree := len(diffs) == 0
	r.Agree = &agree
	r.Mismatches = diffs
}
