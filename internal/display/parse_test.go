package display

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Name
		local   bool
		wantErr bool
	}{
		{in: ":0", want: Name{Display: 0}, local: true},
		{in: ":1.2", want: Name{Display: 1, Screen: 2}, local: true},
		{in: "unix:3", want: Name{Host: "unix", Display: 3}, local: true},
		{in: "localhost:10.0", want: Name{Host: "localhost", Display: 10}},
		{in: "tcp/example.org:1", want: Name{Protocol: "tcp", Host: "example.org", Display: 1}},
		{in: "unix/:4", want: Name{Protocol: "unix", Display: 4}, local: true},
		{in: "[::1]:0", want: Name{Host: "::1"}},
		{in: "::1:2", want: Name{Host: "::1", Display: 2}},
		{in: "", wantErr: true},
		{in: "nocolon", wantErr: true},
		{in: ":", wantErr: true},
		{in: ":x", wantErr: true},
		{in: ":0.", wantErr: true},
		{in: ":0.1.2", wantErr: true},
		{in: ":-1", wantErr: true},
		{in: "decnet::0", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %+v, want error", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if got.Local() != tt.local {
				t.Fatalf("Parse(%q).Local() = %v, want %v", tt.in, got.Local(), tt.local)
			}
		})
	}
}

func TestNameSocketAndPort(t *testing.T) {
	local, err := Parse(":7")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := local.SocketPath(); got != "/tmp/.X11-unix/X7" {
		t.Fatalf("SocketPath() = %q", got)
	}

	remote, err := Parse("example.org:2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if remote.SocketPath() != "" {
		t.Fatalf("SocketPath() = %q, want empty for tcp", remote.SocketPath())
	}
	if remote.TCPPort() != 6002 {
		t.Fatalf("TCPPort() = %d, want 6002", remote.TCPPort())
	}
}

func TestNameString_RoundTrips(t *testing.T) {
	for _, in := range []string{":0", "tcp/example.org:1.1", "[::1]:3", "unix:2"} {
		n, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		back, err := Parse(n.String())
		if err != nil {
			t.Fatalf("Parse(%q) after String(): %v", n.String(), err)
		}
		if back != n {
			t.Fatalf("round trip of %q: %+v != %+v", in, back, n)
		}
	}
}
