//go:build windows

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/windows"
)

// controlReuseAddr sets SO_REUSEADDR via the Windows sockets API.
func controlReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// hardenTCPConn: Windows has no SIGPIPE equivalent to suppress on sockets.
func hardenTCPConn(_ *net.TCPConn) error {
	return nil
}
