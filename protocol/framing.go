package protocol

import (
	"time"

	"github.com/westonvoglesonger/cortex/cortexerr"
	"github.com/westonvoglesonger/cortex/transport"
	"github.com/westonvoglesonger/cortex/wire"
)

// recvFull reads exactly len(buf) bytes from t, looping over partial
// Recv calls, and fails fast on timeout or I/O error. The per-call timeout
// is the budget for the whole read, not each individual Recv.
func recvFull(t transport.Transport, buf []byte, timeout time.Duration) error {
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	got := 0
	for got < len(buf) {
		remaining := timeout
		if !deadline.IsZero() {
			remaining = time.Until(deadline)
			if remaining <= 0 {
				return cortexerr.Wrap(cortexerr.KindTimeout, "protocol.recvFull", transport.ErrTimeout)
			}
		}
		n, err := t.Recv(buf[got:], remaining)
		if err != nil {
			if err == transport.ErrTimeout {
				return cortexerr.Wrap(cortexerr.KindTimeout, "protocol.recvFull", err)
			}
			return cortexerr.Wrap(cortexerr.KindIO, "protocol.recvFull", err)
		}
		got += n
	}
	return nil
}

// WriteFrame encodes and sends f over t.
func WriteFrame(t transport.Transport, f wire.Frame) error {
	buf, err := wire.Encode(f)
	if err != nil {
		return cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.WriteFrame", err)
	}
	if _, err := t.Send(buf); err != nil {
		return cortexerr.Wrap(cortexerr.KindIO, "protocol.WriteFrame", err)
	}
	return nil
}

// ReadFrame reads one complete frame from t and CRC-validates it. The
// header read and the read of the rest (payload + trailer) each block for
// at most timeout.
func ReadFrame(t transport.Transport, timeout time.Duration) (wire.Frame, error) {
	header := make([]byte, wire.HeaderLen())
	if err := recvFull(t, header, timeout); err != nil {
		return wire.Frame{}, err
	}
	payloadLen, err := wire.PeekPayloadLen(header)
	if err != nil {
		return wire.Frame{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.ReadFrame", err)
	}
	if payloadLen > wire.MaxPayload {
		return wire.Frame{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.ReadFrame", wire.ErrPayloadTooLarge)
	}
	rest := make([]byte, wire.TotalLen(payloadLen)-wire.HeaderLen())
	if err := recvFull(t, rest, timeout); err != nil {
		return wire.Frame{}, err
	}
	full := append(header, rest...)
	f, err := wire.Decode(full)
	if err != nil {
		return wire.Frame{}, cortexerr.Wrap(cortexerr.KindProtocolViolation, "protocol.ReadFrame", err)
	}
	return f, nil
}
