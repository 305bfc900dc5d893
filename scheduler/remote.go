package scheduler

import (
	"time"

	"github.com/westonvoglesonger/cortex/protocol"
	"github.com/westonvoglesonger/cortex/transport"
)

// tcpInfoSamplePeriod bounds how often RemoteRunner pays for a
// getsockopt(TCP_INFO) syscall: once every this-many windows rather than
// every window.
const tcpInfoSamplePeriod = 16

// RemoteRunner dispatches each window to a connected adapter over an
// already-handshaken protocol.HostSession, carrying the adapter's own
// tin/tstart/tend/tfirst_tx/tlast_tx timestamps back into telemetry
// (§4.4 "out-of-process execution path").
type RemoteRunner struct {
	session *protocol.HostSession
	clock   Clock
	windows uint64
}

// NewRemoteRunner wraps a handshaken session. clock supplies tin (the
// host-observed release time handed to the adapter in WINDOW_REQ).
func NewRemoteRunner(session *protocol.HostSession, clock Clock) *RemoteRunner {
	return &RemoteRunner{session: session, clock: clock}
}

// SampleTCPInfo implements scheduler.TCPDiagnosable. It only samples every
// tcpInfoSamplePeriod windows, and only reports anything when the session's
// transport is a TCP-backed *transport.NetConn.
func (r *RemoteRunner) SampleTCPInfo() (rttNs uint64, retransmits, totalRetrans uint32, ok bool) {
	r.windows++
	if r.windows%tcpInfoSamplePeriod != 1 {
		return 0, 0, 0, false
	}
	nc, isNetConn := r.session.Transport().(*transport.NetConn)
	if !isNetConn {
		return 0, 0, 0, false
	}
	info, err := nc.TCPInfo()
	if err != nil {
		return 0, 0, 0, false
	}
	return uint64(info.RTT.Nanoseconds()), info.Retransmits, info.TotalRetrans, true
}

// RunWindow sends WINDOW_REQ and returns the matching RESULT's output and
// device timestamps.
func (r *RemoteRunner) RunWindow(input []float32) (output []byte, tin, tstart, tend, tfirstTx, tlastTx uint64, err error) {
	payload, err := EncodeWindowFloat32(input)
	if err != nil {
		return nil, 0, 0, 0, 0, 0, err
	}
	tinNs := r.clock.NowNS()
	result, err := r.session.RequestWindow(tinNs, payload)
	if err != nil {
		return nil, 0, 0, 0, 0, 0, err
	}
	return result.Output, result.Tin, result.Tstart, result.Tend, result.TfirstTx, result.TlastTx, nil
}

// PingInterval is a 2-second period for PINGs between windows (§4.3.3).
// This package only defines the constant; nothing in this module sends
// PINGs on a timer, and cmd/cortex-run uses the value as the adapter
// session's handshake and per-message recv timeout.
const PingInterval = 2 * time.Second
