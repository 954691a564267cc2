package xcb

import (
	"errors"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"strings"
	"testing"
	"unsafe"

	"github.com/1broseidon/rawxcb"
)

func TestBorrow_RejectsNil(t *testing.T) {
	b, err := Borrow(nil)
	if !errors.Is(err, rawxcb.ErrNilConnection) {
		t.Fatalf("Borrow(nil) error = %v, want %v", err, rawxcb.ErrNilConnection)
	}
	if b != nil {
		t.Fatalf("Borrow(nil) = %v, want nil", b)
	}
}

func TestBorrow_ReturnsLentPointer(t *testing.T) {
	var handle byte
	p := unsafe.Pointer(&handle)
	b, err := Borrow(p)
	if err != nil {
		t.Fatalf("Borrow() error: %v", err)
	}
	if got := rawxcb.Raw(b); got.Pointer() != p {
		t.Fatalf("Raw(borrowed) = %p, want %p", got, p)
	}

	var nilBorrowed *Borrowed
	if nilBorrowed.RawXCBConnection() != nil {
		t.Fatal("nil *Borrowed should yield a nil connection")
	}
}

func TestConsumers_RejectNilConnection(t *testing.T) {
	empty := &Borrowed{}
	checks := map[string]func() error{
		"CheckConnection": func() error { return CheckConnection(empty) },
		"FileDescriptor":  func() error { _, err := FileDescriptor(empty); return err },
		"QuerySetup":      func() error { _, err := QuerySetup(empty); return err },
		"Flush":           func() error { return Flush(empty) },
		"GenerateID":      func() error { _, err := GenerateID(empty); return err },
		"closed Conn":     func() error { return CheckConnection(&Conn{}) },
	}
	for name, check := range checks {
		t.Run(name, func(t *testing.T) {
			if err := check(); !errors.Is(err, rawxcb.ErrNilConnection) {
				t.Fatalf("error = %v, want %v", err, rawxcb.ErrNilConnection)
			}
		})
	}
}

func TestConnErrorCode_String(t *testing.T) {
	tests := []struct {
		code ConnErrorCode
		want string
	}{
		{ConnError, "socket, pipe or stream error"},
		{ConnClosedParseErr, "error parsing display string"},
		{ConnClosedInvalidScreen, "no screen matching the display"},
		{ConnErrorCode(42), "unknown connection error 42"},
	}
	for _, tt := range tests {
		if got := tt.code.String(); got != tt.want {
			t.Errorf("ConnErrorCode(%d).String() = %q, want %q", int(tt.code), got, tt.want)
		}
	}
}

func TestConnectionError_Message(t *testing.T) {
	err := error(&ConnectionError{Code: ConnClosedParseErr, Display: "bogus"})
	if !strings.Contains(err.Error(), `"bogus"`) {
		t.Fatalf("Error() = %q, want display name included", err.Error())
	}

	var connErr *ConnectionError
	if !errors.As(err, &connErr) || connErr.Code != ConnClosedParseErr {
		t.Fatalf("errors.As failed for %v", err)
	}

	if got := (&ConnectionError{Code: ConnError}).Error(); got != "xcb: connection failed: socket, pipe or stream error" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestConnect_InvalidDisplay(t *testing.T) {
	conn, err := Connect("this is not a display")
	if errors.Is(err, ErrUnsupported) {
		t.Skip("libxcb support not compiled in")
	}
	if err == nil {
		conn.Close()
		t.Fatal("expected Connect to fail for an unparsable display")
	}
	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("error = %T %v, want *ConnectionError", err, err)
	}
}

func TestConnect_LiveServer(t *testing.T) {
	if os.Getenv("DISPLAY") == "" {
		t.Skip("DISPLAY not set")
	}
	conn, err := Connect("")
	if errors.Is(err, ErrUnsupported) {
		t.Skip("libxcb support not compiled in")
	}
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer conn.Close()

	if err := CheckConnection(conn); err != nil {
		t.Fatalf("CheckConnection() error: %v", err)
	}
	if fd, err := FileDescriptor(conn); err != nil || fd < 0 {
		t.Fatalf("FileDescriptor() = %d, %v", fd, err)
	}
	setup, err := QuerySetup(conn)
	if err != nil {
		t.Fatalf("QuerySetup() error: %v", err)
	}
	if setup.ProtocolMajor != 11 {
		t.Fatalf("ProtocolMajor = %d, want 11", setup.ProtocolMajor)
	}
	if len(setup.Screens) == 0 {
		t.Fatal("expected at least one screen")
	}
	if conn.Screen() < 0 || conn.Screen() >= len(setup.Screens) {
		t.Fatalf("Screen() = %d out of range [0,%d)", conn.Screen(), len(setup.Screens))
	}

	// A second wrapper over the same pointer behaves identically.
	borrowed, err := Borrow(conn.RawXCBConnection().Pointer())
	if err != nil {
		t.Fatalf("Borrow() error: %v", err)
	}
	if _, err := GenerateID(borrowed); err != nil {
		t.Fatalf("GenerateID(borrowed) error: %v", err)
	}
	if err := Flush(borrowed); err != nil {
		t.Fatalf("Flush(borrowed) error: %v", err)
	}

	if err := conn.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if conn.RawXCBConnection() != nil {
		t.Fatal("RawXCBConnection() should be nil after Close")
	}
	if err := conn.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}

func TestBuildVariants_ShareDocumentedAPI(t *testing.T) {
	exported := func(path string) map[string]bool {
		t.Helper()
		f, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", path, err)
		}
		names := make(map[string]bool)
		for _, decl := range f.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || !fn.Name.IsExported() {
				continue
			}
			name := fn.Name.Name
			if fn.Recv != nil {
				name = "Conn." + name
			}
			if fn.Doc == nil {
				t.Errorf("%s: %s has no doc comment", path, name)
			}
			names[name] = true
		}
		return names
	}

	linux := exported("conn_linux.go")
	other := exported("conn_other.go")
	for name := range linux {
		if !other[name] {
			t.Errorf("%s is missing from conn_other.go", name)
		}
	}
	for name := range other {
		if !linux[name] {
			t.Errorf("%s is missing from conn_linux.go", name)
		}
	}
}
