package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages a pure-Go X11 connection and core X resources
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window
}

// NewConnection establishes a connection to display. An empty display uses
// $DISPLAY.
func NewConnection(display string) (*Connection, error) {
	xu, err := xgbutil.NewConnDisplay(display)
	if err != nil {
		return nil, err
	}

	return &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}, nil
}

// Screen describes one root screen from the connection setup.
type Screen struct {
	Root   uint32 `json:"root" yaml:"root"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// ServerInfo is the server description sent during connection setup.
type ServerInfo struct {
	Vendor           string   `json:"vendor" yaml:"vendor"`
	Release          uint32   `json:"release" yaml:"release"`
	ProtocolMajor    uint16   `json:"protocol_major" yaml:"protocol_major"`
	ProtocolMinor    uint16   `json:"protocol_minor" yaml:"protocol_minor"`
	ResourceIDBase   uint32   `json:"resource_id_base" yaml:"resource_id_base"`
	ResourceIDMask   uint32   `json:"resource_id_mask" yaml:"resource_id_mask"`
	MaxRequestLength uint16   `json:"max_request_length" yaml:"max_request_length"`
	DefaultScreen    int      `json:"default_screen" yaml:"default_screen"`
	Screens          []Screen `json:"screens,omitempty" yaml:"screens,omitempty"`
}

// ServerInfo returns the setup data of the connection.
func (c *Connection) ServerInfo() ServerInfo {
	return serverInfoFromSetup(c.XUtil.Setup(), c.XUtil.Conn().DefaultScreen)
}

func serverInfoFromSetup(setup *xproto.SetupInfo, defaultScreen int) ServerInfo {
	if setup == nil {
		return ServerInfo{DefaultScreen: defaultScreen}
	}
	info := ServerInfo{
		Vendor:           setup.Vendor,
		Release:          setup.ReleaseNumber,
		ProtocolMajor:    setup.ProtocolMajorVersion,
		ProtocolMinor:    setup.ProtocolMinorVersion,
		ResourceIDBase:   setup.ResourceIdBase,
		ResourceIDMask:   setup.ResourceIdMask,
		MaxRequestLength: setup.MaximumRequestLength,
		DefaultScreen:    defaultScreen,
		Screens:          make([]Screen, 0, len(setup.Roots)),
	}
	for _, root := range setup.Roots {
		info.Screens = append(info.Screens, Screen{
			Root:   uint32(root.Root),
			Width:  int(root.WidthInPixels),
			Height: int(root.HeightInPixels),
		})
	}
	return info
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	if c == nil || c.XUtil == nil {
		return
	}
	c.XUtil.Conn().Close()
}
