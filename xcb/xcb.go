// Package xcb implements and consumes [rawxcb.AsRawConnection] on top of
// libxcb.
//
// [Conn] owns a connection opened with xcb_connect. [Borrowed] wraps a
// pointer lent by some other library. The functions taking a
// rawxcb.AsRawConnection accept either of them, or any third-party wrapper
// implementing the interface.
//
// Native calls need cgo on Linux with libxcb's development files installed
// (pkg-config name "xcb"). Other builds compile, but every native entry point
// returns [ErrUnsupported].
package xcb

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/1broseidon/rawxcb"
)

// ErrUnsupported is returned by native entry points in builds without cgo or
// outside Linux.
var ErrUnsupported = errors.New("xcb: libxcb support not compiled in")

// ConnErrorCode mirrors the values returned by xcb_connection_has_error.
type ConnErrorCode int

const (
	ConnError                 ConnErrorCode = 1 // XCB_CONN_ERROR
	ConnClosedExtNotSupported ConnErrorCode = 2 // XCB_CONN_CLOSED_EXT_NOTSUPPORTED
	ConnClosedMemInsufficient ConnErrorCode = 3 // XCB_CONN_CLOSED_MEM_INSUFFICIENT
	ConnClosedReqLenExceed    ConnErrorCode = 4 // XCB_CONN_CLOSED_REQ_LEN_EXCEED
	ConnClosedParseErr        ConnErrorCode = 5 // XCB_CONN_CLOSED_PARSE_ERR
	ConnClosedInvalidScreen   ConnErrorCode = 6 // XCB_CONN_CLOSED_INVALID_SCREEN
	ConnClosedFDPassingFailed ConnErrorCode = 7 // XCB_CONN_CLOSED_FDPASSING_FAILED
)

var connErrorText = map[ConnErrorCode]string{
	ConnError:                 "socket, pipe or stream error",
	ConnClosedExtNotSupported: "extension not supported",
	ConnClosedMemInsufficient: "insufficient memory",
	ConnClosedReqLenExceed:    "request length exceeded",
	ConnClosedParseErr:        "error parsing display string",
	ConnClosedInvalidScreen:   "no screen matching the display",
	ConnClosedFDPassingFailed: "file descriptor passing failed",
}

func (c ConnErrorCode) String() string {
	if text, ok := connErrorText[c]; ok {
		return text
	}
	return fmt.Sprintf("unknown connection error %d", int(c))
}

// ConnectionError is returned when libxcb reports a connection in an error
// state.
type ConnectionError struct {
	Code    ConnErrorCode
	Display string
}

func (e *ConnectionError) Error() string {
	if e.Display != "" {
		return fmt.Sprintf("xcb: connection to %q failed: %s", e.Display, e.Code)
	}
	return fmt.Sprintf("xcb: connection failed: %s", e.Code)
}

// Screen describes one root screen from the connection setup.
type Screen struct {
	Root   uint32 `json:"root" yaml:"root"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
}

// Setup is the subset of xcb_setup_t reported by [QuerySetup].
type Setup struct {
	ProtocolMajor    uint16   `json:"protocol_major" yaml:"protocol_major"`
	ProtocolMinor    uint16   `json:"protocol_minor" yaml:"protocol_minor"`
	Release          uint32   `json:"release" yaml:"release"`
	Vendor           string   `json:"vendor" yaml:"vendor"`
	ResourceIDBase   uint32   `json:"resource_id_base" yaml:"resource_id_base"`
	ResourceIDMask   uint32   `json:"resource_id_mask" yaml:"resource_id_mask"`
	MaxRequestLength uint16   `json:"max_request_length" yaml:"max_request_length"`
	Screens          []Screen `json:"screens,omitempty" yaml:"screens,omitempty"`
}

// Borrowed is a non-owning handle on a connection owned elsewhere. It never
// disconnects; the lender controls the lifetime.
type Borrowed struct {
	conn *rawxcb.Connection
}

var _ rawxcb.AsRawConnection = (*Borrowed)(nil)

// Borrow wraps p, a pointer to a live xcb_connection_t. By calling it the
// caller attests that p stays valid for as long as the returned value is in
// use. Only nil is rejected.
func Borrow(p unsafe.Pointer) (*Borrowed, error) {
	if p == nil {
		return nil, rawxcb.ErrNilConnection
	}
	return &Borrowed{conn: rawxcb.FromPointer(p)}, nil
}

// RawXCBConnection returns the borrowed pointer.
func (b *Borrowed) RawXCBConnection() *rawxcb.Connection {
	if b == nil {
		return nil
	}
	return b.conn
}
