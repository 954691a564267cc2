//go:build !linux || !cgo

package xcb

import "github.com/1broseidon/rawxcb"

// Conn owns a libxcb connection. In this build it can never be opened.
type Conn struct{}

var _ rawxcb.AsRawConnection = (*Conn)(nil)

// Connect always fails with ErrUnsupported in this build.
func Connect(display string) (*Conn, error) {
	return nil, ErrUnsupported
}

// RawXCBConnection returns the owned connection, or nil once closed.
func (c *Conn) RawXCBConnection() *rawxcb.Connection { return nil }

// Screen returns the preferred screen number chosen by xcb_connect.
func (c *Conn) Screen() int { return 0 }

// Close disconnects from the server. Further calls are no-ops.
func (c *Conn) Close() error { return nil }

func unsupported(c rawxcb.AsRawConnection) error {
	if _, err := rawxcb.Require(c); err != nil {
		return err
	}
	return ErrUnsupported
}

// CheckConnection reports whether c is in an error state.
func CheckConnection(c rawxcb.AsRawConnection) error {
	return unsupported(c)
}

// FileDescriptor returns the socket behind c. The descriptor stays owned by
// libxcb.
func FileDescriptor(c rawxcb.AsRawConnection) (int, error) {
	return -1, unsupported(c)
}

// QuerySetup copies the server setup data of c.
func QuerySetup(c rawxcb.AsRawConnection) (Setup, error) {
	return Setup{}, unsupported(c)
}

// Flush sends all buffered requests of c to the server.
func Flush(c rawxcb.AsRawConnection) error {
	return unsupported(c)
}

// GenerateID allocates a new resource id on c.
func GenerateID(c rawxcb.AsRawConnection) (uint32, error) {
	return 0, unsupported(c)
}
