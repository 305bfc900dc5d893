//go:build linux

package transport

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// controlReuseAddr sets SO_REUSEADDR before bind, via the net.ListenConfig
// Control hook.
func controlReuseAddr(_, _ string, c syscall.RawConn) error {
	var sockErr error
	err := c.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return sockErr
}

// hardenTCPConn applies Linux's SIGPIPE-avoidance convention. Linux sends
// use MSG_NOSIGNAL at the syscall layer; the Go runtime already installs
// this behavior for every net.Conn write, so there is nothing additional
// to set here.
func hardenTCPConn(conn *net.TCPConn) error {
	return nil
}
