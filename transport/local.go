//go:build !windows

package transport

import (
	"fmt"
	"net"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// Local is the harness side of a spawned-adapter socket pair (§4.2 "Local
// (spawned child)"). It owns the harness's half of the pair and the child
// process handle; Close closes the harness end and waits for the child.
type Local struct {
	*NetConn
	cmd *exec.Cmd
}

// SpawnLocal creates an anonymous AF_UNIX socket pair, starts name/args
// with the remote half of the pair as its first extra file descriptor
// (fd 3 in the child), and returns the harness-side Transport.
func SpawnLocal(name string, args ...string) (*Local, error) {
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, fmt.Errorf("transport: socketpair: %w", err)
	}
	harnessFile := os.NewFile(uintptr(fds[0]), "cortex-harness-sock")
	childFile := os.NewFile(uintptr(fds[1]), "cortex-adapter-sock")
	defer childFile.Close()

	cmd := exec.Command(name, args...)
	cmd.ExtraFiles = []*os.File{childFile}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		harnessFile.Close()
		return nil, fmt.Errorf("transport: spawn adapter: %w", err)
	}

	conn, err := net.FileConn(harnessFile)
	harnessFile.Close()
	if err != nil {
		cmd.Process.Kill()
		return nil, fmt.Errorf("transport: file conn: %w", err)
	}

	return &Local{NetConn: Wrap(conn), cmd: cmd}, nil
}

// Close closes the harness end of the pair and waits for the adapter
// child to exit, per §4.2 ("On teardown the harness closes its end and
// waits for the child").
func (l *Local) Close() error {
	err := l.NetConn.Close()
	if l.cmd != nil && l.cmd.Process != nil {
		_ = l.cmd.Wait()
	}
	return err
}

// AdapterSideFromInheritedFD builds the adapter-process Transport from its
// end of a socket pair inherited at fd (3 when SpawnLocal passed exactly
// one ExtraFiles entry).
func AdapterSideFromInheritedFD(fd uintptr) (Transport, error) {
	f := os.NewFile(fd, "cortex-adapter-sock")
	conn, err := net.FileConn(f)
	f.Close()
	if err != nil {
		return nil, fmt.Errorf("transport: adapter file conn: %w", err)
	}
	return Wrap(conn), nil
}
