package protocol

import (
	"fmt"
	"time"

	"github.com/westonvoglesonger/cortex/cortexerr"
	"github.com/westonvoglesonger/cortex/transport"
	"github.com/westonvoglesonger/cortex/wire"
)

// HostState is the harness-side protocol state (§4.3).
type HostState int

const (
	StateDisconnected HostState = iota
	StateHandshake
	StateReady
	StatePerWindow
	StateTerminating
)

// HostSession drives the harness side of the wire protocol over one
// transport connection: handshake, then per-window request/response with
// bounded retry, interleaved ping, and graceful teardown.
type HostSession struct {
	t       transport.Transport
	state   HostState
	seq     uint16
	timeout time.Duration
}

// NewHostSession wraps t with the harness-side state machine. timeout is
// the per-round-trip recv budget used for every message after the
// handshake.
func NewHostSession(t transport.Transport, timeout time.Duration) *HostSession {
	return &HostSession{t: t, state: StateDisconnected, timeout: timeout}
}

// State reports the current protocol state.
func (h *HostSession) State() HostState { return h.state }

// Transport exposes the underlying channel so callers can reach
// transport-level diagnostics (e.g. *transport.NetConn.TCPInfo) that sit
// below the wire protocol.
func (h *HostSession) Transport() transport.Transport { return h.t }

// Handshake waits for the adapter's HELLO, validates its ABI version,
// sends CONFIG for specURI, and waits for CONFIG_ACK. A non-zero ACK
// status or ABI mismatch is fatal (KindKernelRejectedConfig /
// KindProtocolViolation) and leaves the session Disconnected.
func (h *HostSession) Handshake(cfg ConfigMsg, handshakeTimeout time.Duration) (Hello, ConfigAck, error) {
	h.state = StateHandshake

	f, err := ReadFrame(h.t, handshakeTimeout)
	if err != nil {
		h.state = StateDisconnected
		return Hello{}, ConfigAck{}, err
	}
	if f.Type != wire.FrameHello {
		h.state = StateDisconnected
		return Hello{}, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake",
			fmt.Errorf("expected HELLO, got frame type 0x%02x", f.Type))
	}
	hello, err := DecodeHello(f.Payload)
	if err != nil {
		h.state = StateDisconnected
		return Hello{}, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake", err)
	}
	if hello.ABIVersion != ABIVersion {
		h.state = StateDisconnected
		return hello, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake",
			fmt.Errorf("adapter speaks ABI %d, host speaks %d", hello.ABIVersion, ABIVersion))
	}
	if cfg.WindowSamples > hello.MaxWindowSamples {
		h.state = StateDisconnected
		return hello, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake",
			fmt.Errorf("config wants %d window samples, adapter advertises a max of %d", cfg.WindowSamples, hello.MaxWindowSamples))
	}
	if cfg.Channels > hello.MaxChannels {
		h.state = StateDisconnected
		return hello, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake",
			fmt.Errorf("config wants %d channels, adapter advertises a max of %d", cfg.Channels, hello.MaxChannels))
	}
	if !specURIOffered(hello.SpecURIs, cfg.SpecURI) {
		h.state = StateDisconnected
		return hello, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake",
			fmt.Errorf("adapter does not advertise spec URI %q", cfg.SpecURI))
	}

	configFrame := wire.Frame{Type: wire.FrameConfig, Seq: h.nextSeq(), Payload: cfg.Encode()}
	if err := WriteFrame(h.t, configFrame); err != nil {
		h.state = StateDisconnected
		return hello, ConfigAck{}, err
	}

	f, err = ReadFrame(h.t, handshakeTimeout)
	if err != nil {
		h.state = StateDisconnected
		return hello, ConfigAck{}, err
	}
	if f.Type == wire.FrameError {
		h.state = StateDisconnected
		em, _ := DecodeErrorMsg(f.Payload)
		return hello, ConfigAck{}, cortexerr.Wrap(cortexerr.KindKernelRejectedConfig, "protocol.Handshake",
			fmt.Errorf("adapter error: %s", em.Message))
	}
	if f.Type != wire.FrameConfigAck {
		h.state = StateDisconnected
		return hello, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake",
			fmt.Errorf("expected CONFIG_ACK, got frame type 0x%02x", f.Type))
	}
	ack, err := DecodeConfigAck(f.Payload)
	if err != nil {
		h.state = StateDisconnected
		return hello, ConfigAck{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Handshake", err)
	}
	if ack.Status != 0 {
		h.state = StateDisconnected
		return hello, ack, cortexerr.Wrap(cortexerr.KindKernelRejectedConfig, "protocol.Handshake",
			fmt.Errorf("config_ack status %d", ack.Status))
	}

	h.state = StateReady
	return hello, ack, nil
}

// RequestWindow sends one WINDOW_REQ and waits for its matching RESULT,
// re-sending the same WINDOW_REQ and waiting again exactly once on timeout
// (§4.3.2: "on a WINDOW_REQ
// timeout, retry once; a second timeout is fatal"). A seq mismatch on the
// reply is a protocol violation, not a retry case.
func (h *HostSession) RequestWindow(tinNs uint64, input []byte) (Result, error) {
	h.state = StatePerWindow
	defer func() {
		if h.state == StatePerWindow {
			h.state = StateReady
		}
	}()

	seq := h.nextSeq()
	req := WindowReq{TinNs: tinNs, Input: input}
	frame := wire.Frame{Type: wire.FrameWindowReq, Seq: seq, Payload: req.Encode()}
	if err := WriteFrame(h.t, frame); err != nil {
		h.state = StateDisconnected
		return Result{}, err
	}

	result, err := h.awaitResult(seq)
	if err == nil {
		return result, nil
	}
	if !isKind(err, cortexerr.KindTimeout) {
		h.state = StateDisconnected
		return Result{}, err
	}

	// Retry once: re-send the same WINDOW_REQ with the same seq.
	if err := WriteFrame(h.t, frame); err != nil {
		h.state = StateDisconnected
		return Result{}, err
	}
	result, err = h.awaitResult(seq)
	if err != nil {
		h.state = StateDisconnected
		return Result{}, err
	}
	return result, nil
}

func (h *HostSession) awaitResult(seq uint16) (Result, error) {
	f, err := ReadFrame(h.t, h.timeout)
	if err != nil {
		return Result{}, err
	}
	if f.Type == wire.FrameError {
		em, _ := DecodeErrorMsg(f.Payload)
		return Result{}, cortexerr.Wrap(cortexerr.KindKernelCrash, "protocol.awaitResult",
			fmt.Errorf("adapter error: %s", em.Message))
	}
	if f.Type != wire.FrameResult {
		return Result{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.awaitResult",
			fmt.Errorf("expected RESULT, got frame type 0x%02x", f.Type))
	}
	if f.Seq != seq {
		return Result{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.awaitResult",
			fmt.Errorf("seq mismatch: sent %d, got %d", seq, f.Seq))
	}
	return DecodeResult(f.Payload)
}

// Ping sends a PING carrying hostTxNs and returns the matching PONG.
func (h *HostSession) Ping(hostTxNs uint64) (Pong, error) {
	frame := wire.Frame{Type: wire.FramePing, Seq: h.nextSeq(), Payload: Ping{HostTxNs: hostTxNs}.Encode()}
	if err := WriteFrame(h.t, frame); err != nil {
		return Pong{}, err
	}
	f, err := ReadFrame(h.t, h.timeout)
	if err != nil {
		return Pong{}, err
	}
	if f.Type != wire.FramePong {
		return Pong{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.Ping",
			fmt.Errorf("expected PONG, got frame type 0x%02x", f.Type))
	}
	return DecodePong(f.Payload)
}

// Bye sends BYE and transitions to Terminating. The caller is responsible
// for closing the underlying transport after any final drain.
func (h *HostSession) Bye() error {
	h.state = StateTerminating
	frame := wire.Frame{Type: wire.FrameBye, Seq: h.nextSeq()}
	err := WriteFrame(h.t, frame)
	h.state = StateDisconnected
	return err
}

func specURIOffered(offered []string, want string) bool {
	for _, uri := range offered {
		if uri == want {
			return true
		}
	}
	return false
}

func (h *HostSession) nextSeq() uint16 {
	s := h.seq
	h.seq++
	return s
}

func isKind(err error, k cortexerr.Kind) bool {
	ce, ok := err.(*cortexerr.CortexError)
	return ok && ce.Kind == k
}
