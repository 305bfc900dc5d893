package protocol

import (
	"fmt"
	"time"

	"github.com/westonvoglesonger/cortex/cortexerr"
	"github.com/westonvoglesonger/cortex/transport"
	"github.com/westonvoglesonger/cortex/wire"
)

// AdapterSession drives the adapter side of the wire protocol: it sends
// HELLO, waits for CONFIG, replies CONFIG_ACK, then serves WINDOW_REQ/PING
// in a loop until BYE or the transport closes.
type AdapterSession struct {
	t       transport.Transport
	timeout time.Duration
}

// NewAdapterSession wraps t with the adapter-side state machine. timeout
// bounds each recv while serving the per-window loop.
func NewAdapterSession(t transport.Transport, timeout time.Duration) *AdapterSession {
	return &AdapterSession{t: t, timeout: timeout}
}

// Handshake sends hello and waits for the matching CONFIG, returning it so
// the caller can init its kernel before acking.
func (a *AdapterSession) Handshake(hello Hello, handshakeTimeout time.Duration) (ConfigMsg, error) {
	hello.ABIVersion = ABIVersion
	frame := wire.Frame{Type: wire.FrameHello, Payload: hello.Encode()}
	if err := WriteFrame(a.t, frame); err != nil {
		return ConfigMsg{}, err
	}

	f, err := ReadFrame(a.t, handshakeTimeout)
	if err != nil {
		return ConfigMsg{}, err
	}
	if f.Type != wire.FrameConfig {
		return ConfigMsg{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.adapter.Handshake",
			fmt.Errorf("expected CONFIG, got frame type 0x%02x", f.Type))
	}
	return DecodeConfigMsg(f.Payload)
}

// AckConfig replies CONFIG_ACK with the given result, including a non-zero
// status; it never sends an ERROR frame (SendError does that).
func (a *AdapterSession) AckConfig(ack ConfigAck, seq uint16) error {
	frame := wire.Frame{Type: wire.FrameConfigAck, Seq: seq, Payload: ack.Encode()}
	return WriteFrame(a.t, frame)
}

// SendError replies with a fatal ERROR frame, for use during handshake or
// mid-stream when the kernel cannot continue.
func (a *AdapterSession) SendError(seq uint16, kind cortexerr.Kind, message string) error {
	frame := wire.Frame{Type: wire.FrameError, Seq: seq, Payload: ErrorMsg{Kind: kind, Message: message}.Encode()}
	return WriteFrame(a.t, frame)
}

// NextMessage blocks until the host sends a WINDOW_REQ, PING, or BYE, and
// dispatches it to the matching return value; exactly one of the three is
// non-nil on success, or err is non-nil.
type AdapterMessage struct {
	Seq       uint16
	WindowReq *WindowReq
	Ping      *Ping
	Bye       bool
}

// NextMessage reads one frame and classifies it. Any other frame type is
// a protocol violation.
func (a *AdapterSession) NextMessage() (AdapterMessage, error) {
	f, err := ReadFrame(a.t, a.timeout)
	if err != nil {
		return AdapterMessage{}, err
	}
	switch f.Type {
	case wire.FrameWindowReq:
		wr, err := DecodeWindowReq(f.Payload)
		if err != nil {
			return AdapterMessage{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.adapter.NextMessage", err)
		}
		return AdapterMessage{Seq: f.Seq, WindowReq: &wr}, nil
	case wire.FramePing:
		p, err := DecodePing(f.Payload)
		if err != nil {
			return AdapterMessage{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.adapter.NextMessage", err)
		}
		return AdapterMessage{Seq: f.Seq, Ping: &p}, nil
	case wire.FrameBye:
		return AdapterMessage{Seq: f.Seq, Bye: true}, nil
	default:
		return AdapterMessage{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.adapter.NextMessage",
			fmt.Errorf("unexpected frame type 0x%02x", f.Type))
	}
}

// SendResult replies with a RESULT frame matching seq.
func (a *AdapterSession) SendResult(seq uint16, r Result) error {
	frame := wire.Frame{Type: wire.FrameResult, Seq: seq, Payload: r.Encode()}
	return WriteFrame(a.t, frame)
}

// SendPong replies to a PING, stamping adapter-side rx/tx times.
func (a *AdapterSession) SendPong(seq uint16, p Pong) error {
	frame := wire.Frame{Type: wire.FramePong, Seq: seq, Payload: p.Encode()}
	return WriteFrame(a.t, frame)
}

// MonotonicNS reads the adapter's transport clock, used to stamp PONG and
// RESULT timestamps.
func (a *AdapterSession) MonotonicNS() uint64 {
	return a.t.MonotonicNS()
}
