//go:build linux && cgo

package xcb

/*
#cgo pkg-config: xcb
#include <stdlib.h>
#include <xcb/xcb.h>
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/1broseidon/rawxcb"
)

// Conn owns a libxcb connection.
type Conn struct {
	mu     sync.Mutex
	conn   *C.xcb_connection_t
	screen int
}

var _ rawxcb.AsRawConnection = (*Conn)(nil)

// Connect opens a connection to display. An empty display uses $DISPLAY.
func Connect(display string) (*Conn, error) {
	var cdisplay *C.char
	if display != "" {
		cdisplay = C.CString(display)
		defer C.free(unsafe.Pointer(cdisplay))
	}

	var screen C.int
	c := C.xcb_connect(cdisplay, &screen)
	if code := C.xcb_connection_has_error(c); code != 0 {
		// Safe on libxcb's static error connections.
		C.xcb_disconnect(c)
		return nil, &ConnectionError{Code: ConnErrorCode(code), Display: display}
	}

	return &Conn{conn: c, screen: int(screen)}, nil
}

// RawXCBConnection returns the owned connection, or nil once closed.
func (c *Conn) RawXCBConnection() *rawxcb.Connection {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return rawxcb.FromPointer(unsafe.Pointer(c.conn))
}

// Screen returns the preferred screen number chosen by xcb_connect.
func (c *Conn) Screen() int {
	return c.screen
}

// Close disconnects from the server. Further calls are no-ops.
func (c *Conn) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		C.xcb_disconnect(c.conn)
		c.conn = nil
	}
	return nil
}

func native(c rawxcb.AsRawConnection) (*C.xcb_connection_t, error) {
	conn, err := rawxcb.Require(c)
	if err != nil {
		return nil, err
	}
	return (*C.xcb_connection_t)(conn.Pointer()), nil
}

// CheckConnection reports whether c is in an error state.
func CheckConnection(c rawxcb.AsRawConnection) error {
	conn, err := native(c)
	if err != nil {
		return err
	}
	if code := C.xcb_connection_has_error(conn); code != 0 {
		return &ConnectionError{Code: ConnErrorCode(code)}
	}
	return nil
}

// FileDescriptor returns the socket behind c. The descriptor stays owned by
// libxcb.
func FileDescriptor(c rawxcb.AsRawConnection) (int, error) {
	conn, err := native(c)
	if err != nil {
		return -1, err
	}
	fd := int(C.xcb_get_file_descriptor(conn))
	if fd < 0 {
		return -1, failure(c, "no file descriptor")
	}
	return fd, nil
}

// QuerySetup copies the server setup data of c.
func QuerySetup(c rawxcb.AsRawConnection) (Setup, error) {
	conn, err := native(c)
	if err != nil {
		return Setup{}, err
	}
	if err := CheckConnection(c); err != nil {
		return Setup{}, err
	}

	s := C.xcb_get_setup(conn)
	if s == nil {
		return Setup{}, fmt.Errorf("xcb: connection has no setup data")
	}

	setup := Setup{
		ProtocolMajor:    uint16(s.protocol_major_version),
		ProtocolMinor:    uint16(s.protocol_minor_version),
		Release:          uint32(s.release_number),
		Vendor:           C.GoStringN(C.xcb_setup_vendor(s), C.xcb_setup_vendor_length(s)),
		ResourceIDBase:   uint32(s.resource_id_base),
		ResourceIDMask:   uint32(s.resource_id_mask),
		MaxRequestLength: uint16(s.maximum_request_length),
	}

	for it := C.xcb_setup_roots_iterator(s); it.rem > 0; C.xcb_screen_next(&it) {
		setup.Screens = append(setup.Screens, Screen{
			Root:   uint32(it.data.root),
			Width:  int(it.data.width_in_pixels),
			Height: int(it.data.height_in_pixels),
		})
	}
	return setup, nil
}

// Flush sends all buffered requests of c to the server.
func Flush(c rawxcb.AsRawConnection) error {
	conn, err := native(c)
	if err != nil {
		return err
	}
	if C.xcb_flush(conn) <= 0 {
		return failure(c, "flush failed")
	}
	return nil
}

// GenerateID allocates a new resource id on c.
func GenerateID(c rawxcb.AsRawConnection) (uint32, error) {
	conn, err := native(c)
	if err != nil {
		return 0, err
	}
	id := uint32(C.xcb_generate_id(conn))
	if id == ^uint32(0) {
		return 0, failure(c, "generate id failed")
	}
	return id, nil
}

// failure wraps the connection error of c, if any, into a message for op.
func failure(c rawxcb.AsRawConnection, op string) error {
	if err := CheckConnection(c); err != nil {
		return fmt.Errorf("xcb: %s: %w", op, err)
	}
	return fmt.Errorf("xcb: %s", op)
}
