package rawxcb

import (
	"errors"
	"reflect"
	"testing"
	"unsafe"
)

// fakeConn stores a raw pointer and nothing else.
type fakeConn struct {
	ptr *Connection
}

func (f fakeConn) RawXCBConnection() *Connection { return f.ptr }

// otherConn is an unrelated implementer with its own layout.
type otherConn struct {
	name   string
	handle unsafe.Pointer
}

func (o *otherConn) RawXCBConnection() *Connection { return FromPointer(o.handle) }

// fakeHandles backs stand-in connections with real, distinct addresses.
var fakeHandles [8]byte

func fakePointer(i int) *Connection {
	return FromPointer(unsafe.Pointer(&fakeHandles[i]))
}

func TestRaw_ReturnsStoredPointer(t *testing.T) {
	p := fakePointer(0)
	got := Raw(fakeConn{ptr: p})
	if got != p {
		t.Fatalf("Raw() = %p, want %p", got, p)
	}
	if want := uintptr(unsafe.Pointer(&fakeHandles[0])); Addr(got) != want {
		t.Fatalf("Addr(Raw()) = %#x, want %#x", Addr(got), want)
	}
}

func TestRaw_MultipleImplementersThroughOneCallSite(t *testing.T) {
	a := fakePointer(1)
	b := fakePointer(2)

	conns := []AsRawConnection{
		fakeConn{ptr: a},
		&otherConn{name: "other", handle: unsafe.Pointer(b)},
	}
	want := []*Connection{a, b}

	for i, c := range conns {
		if got := Raw(c); got != want[i] {
			t.Fatalf("conns[%d]: Raw() = %p, want %p", i, got, want[i])
		}
	}
}

func TestRaw_GenericOverConcreteType(t *testing.T) {
	p := fakePointer(3)
	extract := func(c *otherConn) *Connection { return Raw(c) }
	if got := extract(&otherConn{handle: unsafe.Pointer(p)}); got != p {
		t.Fatalf("Raw[*otherConn]() = %p, want %p", got, p)
	}
}

func TestRequire(t *testing.T) {
	p := fakePointer(4)

	tests := []struct {
		name    string
		conn    AsRawConnection
		want    *Connection
		wantErr error
	}{
		{"valid pointer", fakeConn{ptr: p}, p, nil},
		{"nil pointer", fakeConn{}, nil, ErrNilConnection},
		{"nil implementer", nil, nil, ErrNilConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Require(tt.conn)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Require() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Require() = %p, want %p", got, tt.want)
			}
		})
	}
}

func TestPointerRoundTrip(t *testing.T) {
	p := fakePointer(5)
	if got := FromPointer(p.Pointer()); got != p {
		t.Fatalf("FromPointer(Pointer()) = %p, want %p", got, p)
	}
	if FromPointer(nil) != nil {
		t.Fatal("FromPointer(nil) should be nil")
	}
	var nilConn *Connection
	if nilConn.Pointer() != nil {
		t.Fatal("(*Connection)(nil).Pointer() should be nil")
	}
}

func TestConnectionIsOpaque(t *testing.T) {
	typ := reflect.TypeOf(Connection{})
	if typ.Size() != 0 {
		t.Fatalf("Connection size = %d, want 0", typ.Size())
	}
	if typ.Comparable() {
		t.Fatal("Connection values must not be comparable")
	}
	for i := 0; i < typ.NumField(); i++ {
		if f := typ.Field(i); f.IsExported() {
			t.Fatalf("Connection has exported field %q", f.Name)
		}
	}
	if typ.NumMethod() != 0 {
		t.Fatalf("Connection has %d value methods, want 0", typ.NumMethod())
	}
}

func TestAsRawConnectionHasSingleMethod(t *testing.T) {
	typ := reflect.TypeOf((*AsRawConnection)(nil)).Elem()
	if typ.NumMethod() != 1 {
		t.Fatalf("AsRawConnection has %d methods, want 1", typ.NumMethod())
	}
	if name := typ.Method(0).Name; name != "RawXCBConnection" {
		t.Fatalf("method = %q, want RawXCBConnection", name)
	}
}
