package rawxcb

import (
	"errors"
	"unsafe"
)

// Connection represents xcb_connection_t in C. It is only ever referenced
// through a pointer; values have no meaning and must not be created in Go.
type Connection struct {
	_ [0]func()
}

// AsRawConnection is implemented by values that hold a libxcb connection.
//
// Implementing it is an attestation the compiler cannot check: the returned
// pointer must be usable with libxcb C functions for as long as the
// implementing value is alive and has not been closed. The pointer is not
// owned by the caller, who must never disconnect or free it.
//
// Returning nil is allowed and means the value holds no connection (not yet
// connected, or already closed). Consumers that pass the pointer to C must
// check for that first, see [Require].
type AsRawConnection interface {
	// RawXCBConnection returns the raw xcb connection pointer of this value.
	RawXCBConnection() *Connection
}

// ErrNilConnection is returned by [Require] when no connection is available.
var ErrNilConnection = errors.New("rawxcb: nil xcb connection")

// Raw extracts the connection pointer from c.
func Raw[C AsRawConnection](c C) *Connection {
	return c.RawXCBConnection()
}

// Require extracts the connection pointer from c and fails if either c or
// the pointer it returns is nil. It cannot detect dangling pointers.
func Require(c AsRawConnection) (*Connection, error) {
	if c == nil {
		return nil, ErrNilConnection
	}
	conn := c.RawXCBConnection()
	if conn == nil {
		return nil, ErrNilConnection
	}
	return conn, nil
}

// FromPointer converts a pointer to xcb_connection_t, typically a package
// local *C.xcb_connection_t, into a *Connection.
func FromPointer(p unsafe.Pointer) *Connection {
	return (*Connection)(p)
}

// Pointer returns c as an unsafe.Pointer for conversion into a package local
// *C.xcb_connection_t.
func (c *Connection) Pointer() unsafe.Pointer {
	return unsafe.Pointer(c)
}

// Addr returns the numeric address of c, for logging and diagnostics only.
func Addr(c *Connection) uintptr {
	return uintptr(unsafe.Pointer(c))
}
