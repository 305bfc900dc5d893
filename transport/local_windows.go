//go:build windows

package transport

import "errors"

// ErrLocalUnsupported is returned by SpawnLocal on platforms without
// anonymous AF_UNIX socket pairs inheritable across exec (Windows).
var ErrLocalUnsupported = errors.New("transport: spawned-child local transport is not supported on windows; use TCP")

// Local is unavailable on Windows; use DialTCP/ListenTCP instead.
type Local struct{}

// SpawnLocal is unavailable on Windows.
func SpawnLocal(_ string, _ ...string) (*Local, error) {
	return nil, ErrLocalUnsupported
}

// AdapterSideFromInheritedFD is unavailable on Windows.
func AdapterSideFromInheritedFD(_ uintptr) (Transport, error) {
	return nil, ErrLocalUnsupported
}
