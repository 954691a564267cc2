package x11

import (
	"os"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

func TestServerInfoFromSetup(t *testing.T) {
	setup := &xproto.SetupInfo{
		ProtocolMajorVersion: 11,
		ProtocolMinorVersion: 0,
		ReleaseNumber:        12101011,
		ResourceIdBase:       0x1200000,
		ResourceIdMask:       0x1fffff,
		MaximumRequestLength: 65535,
		Vendor:               "The X.Org Foundation",
		Roots: []xproto.ScreenInfo{
			{Root: 0x3ad, WidthInPixels: 2560, HeightInPixels: 1440},
			{Root: 0x3ae, WidthInPixels: 1920, HeightInPixels: 1080},
		},
	}

	info := serverInfoFromSetup(setup, 1)
	if info.Vendor != "The X.Org Foundation" || info.Release != 12101011 {
		t.Fatalf("vendor/release = %q/%d", info.Vendor, info.Release)
	}
	if info.ProtocolMajor != 11 || info.ProtocolMinor != 0 {
		t.Fatalf("protocol = %d.%d, want 11.0", info.ProtocolMajor, info.ProtocolMinor)
	}
	if info.DefaultScreen != 1 {
		t.Fatalf("DefaultScreen = %d, want 1", info.DefaultScreen)
	}
	if len(info.Screens) != 2 {
		t.Fatalf("len(Screens) = %d, want 2", len(info.Screens))
	}
	if got := info.Screens[1]; got.Root != 0x3ae || got.Width != 1920 || got.Height != 1080 {
		t.Fatalf("Screens[1] = %+v", got)
	}
}

func TestServerInfoFromSetup_Nil(t *testing.T) {
	info := serverInfoFromSetup(nil, 0)
	if info.Vendor != "" || len(info.Screens) != 0 {
		t.Fatalf("serverInfoFromSetup(nil) = %+v, want empty", info)
	}
}

func TestMonitorAt(t *testing.T) {
	monitors := []Monitor{
		{ID: 0, X: 0, Y: 0, Width: 1920, Height: 1080},
		{ID: 1, X: 1920, Y: 0, Width: 2560, Height: 1440},
	}

	tests := []struct {
		name   string
		x, y   int
		wantID int
		found  bool
	}{
		{"first monitor", 100, 100, 0, true},
		{"left edge of second", 1920, 0, 1, true},
		{"below first", 100, 1200, 0, false},
		{"second monitor tall area", 2000, 1300, 1, true},
		{"off screen", -1, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon := monitorAt(monitors, tt.x, tt.y)
			if !tt.found {
				if mon != nil {
					t.Fatalf("monitorAt(%d,%d) = %d, want none", tt.x, tt.y, mon.ID)
				}
				return
			}
			if mon == nil || mon.ID != tt.wantID {
				t.Fatalf("monitorAt(%d,%d) = %v, want %d", tt.x, tt.y, mon, tt.wantID)
			}
		})
	}
}

func TestNewConnection_LiveServer(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("DISPLAY not set")
	}
	conn, err := NewConnection("")
	if err != nil {
		t.Fatalf("NewConnection() error: %v", err)
	}
	defer conn.Close()

	info := conn.ServerInfo()
	if info.ProtocolMajor != 11 {
		t.Fatalf("ProtocolMajor = %d, want 11", info.ProtocolMajor)
	}
	if len(info.Screens) == 0 {
		t.Fatal("expected at least one screen")
	}
}
