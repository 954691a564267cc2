// Package rawxcb provides the interface [AsRawConnection].
//
// Several Go libraries wrap the libxcb C API behind a "connection" type, and
// several others wrap C libraries that need a pointer to xcb_connection_t to
// work. Without a shared contract a consumer has to pick one wrapper, and one
// version of it, and accept only that concrete type in its public API. Worse,
// the C type cannot be shared directly: cgo gives every package its own
// *C.xcb_connection_t, so two cgo packages cannot even name the same pointer
// type.
//
// This package breaks that coupling. Wrappers implement [AsRawConnection] and
// consumers accept it, converting to and from their own cgo type through
// [Connection.Pointer] and [FromPointer]. The package has no dependencies and
// no runtime behaviour of its own.
package rawxcb
