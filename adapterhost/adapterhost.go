// Package adapterhost implements the adapter-side process loop of §4.4: it
// owns the inherited transport, runs the protocol handshake, loads and
// inits a kernel (in-process fixture or a dlopen'd plugin), then serves
// WINDOW_REQ/PING until BYE or the transport closes, self-killing after a
// period of inactivity (§4.3.4).
package adapterhost

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/westonvoglesonger/cortex/cortexerr"
	"github.com/westonvoglesonger/cortex/kernelabi"
	"github.com/westonvoglesonger/cortex/protocol"
	"github.com/westonvoglesonger/cortex/streamcfg"
	"github.com/westonvoglesonger/cortex/transport"
)

// InactivityTimeout is how long the adapter waits for the next message
// before self-killing (§4.3.4: "an adapter that receives nothing for 5
// seconds outside of a run tears itself down").
const InactivityTimeout = 5 * time.Second

// KernelFactory builds and returns an uninitialized Kernel for a specURI.
// The in-process identity fixture and the cgo plugin loader both satisfy
// this shape; adapterhost doesn't care which.
type KernelFactory func(specURI string) (kernelabi.Kernel, error)

// Host runs the adapter-side loop for one connection.
type Host struct {
	t        transport.Transport
	session  *protocol.AdapterSession
	factory  KernelFactory
	name     string
	bootID   uint32
	log      *logrus.Entry
	maxW     uint32
	maxC     uint32
	specURIs []string
}

// New builds a Host bound to an already-connected transport.
func New(t transport.Transport, name string, bootID uint32, maxWindowSamples, maxChannels uint32, specURIs []string, factory KernelFactory, log *logrus.Entry) *Host {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Host{
		t:        t,
		session:  protocol.NewAdapterSession(t, InactivityTimeout),
		factory:  factory,
		name:     name,
		bootID:   bootID,
		log:      log.WithField("component", "adapterhost"),
		maxW:     maxWindowSamples,
		maxC:     maxChannels,
		specURIs: specURIs,
	}
}

// Run drives the adapter through handshake and the per-window loop until
// BYE, transport close, or a fatal protocol/kernel error. It returns nil on
// a clean BYE-initiated shutdown.
func (h *Host) Run() error {
	cfg, err := h.session.Handshake(protocol.Hello{
		BootID:           h.bootID,
		AdapterName:      h.name,
		MaxWindowSamples: h.maxW,
		MaxChannels:      h.maxC,
		SpecURIs:         h.specURIs,
	}, InactivityTimeout)
	if err != nil {
		return err
	}

	kernel, err := h.factory(cfg.SpecURI)
	if err != nil {
		_ = h.session.AckConfig(protocol.ConfigAck{Status: 1}, 0)
		return cortexerr.Wrap(cortexerr.KindKernelRejectedConfig, "adapterhost.Run", err)
	}

	dtype := streamcfg.DType(cfg.DType)
	initResult, err := kernel.Init(kernelabi.Config{
		SampleRateHz:  cfg.SampleRateHz,
		WindowSamples: cfg.WindowSamples,
		HopSamples:    cfg.HopSamples,
		Channels:      cfg.Channels,
		DType:         dtype,
		RawParams:     cfg.PluginParams,
		Params:        kernelabi.ParseParams(cfg.PluginParams),
	})
	if err != nil {
		_ = h.session.AckConfig(protocol.ConfigAck{Status: 1}, 0)
		return cortexerr.Wrap(cortexerr.KindKernelRejectedConfig, "adapterhost.Run", err)
	}
	defer kernel.Teardown()

	if err := h.session.AckConfig(protocol.ConfigAck{
		OutputWindowSamples: initResult.OutputWindowSamples,
		OutputChannels:      initResult.OutputChannels,
	}, 0); err != nil {
		return err
	}

	windowBytes := int(initResult.OutputWindowSamples) * int(initResult.OutputChannels) * dtype.Size()
	h.log.WithField("spec_uri", cfg.SpecURI).Info("kernel ready, serving windows")

	for {
		msg, err := h.session.NextMessage()
		if err != nil {
			return err
		}
		switch {
		case msg.Bye:
			h.log.Info("received BYE, shutting down")
			return nil
		case msg.Ping != nil:
			rxNs := h.session.MonotonicNS()
			txNs := h.session.MonotonicNS()
			if err := h.session.SendPong(msg.Seq, protocol.Pong{
				HostTxNs:    msg.Ping.HostTxNs,
				AdapterRxNs: rxNs,
				AdapterTxNs: txNs,
			}); err != nil {
				return err
			}
		case msg.WindowReq != nil:
			if err := h.serveWindow(kernel, msg.Seq, *msg.WindowReq, windowBytes); err != nil {
				return err
			}
		default:
			return cortexerr.Wrap(cortexerr.KindProtocolViolation, "adapterhost.Run", fmt.Errorf("unclassified message"))
		}
	}
}

func (h *Host) serveWindow(kernel kernelabi.Kernel, seq uint16, req protocol.WindowReq, outBytes int) error {
	tstart := h.session.MonotonicNS()
	out := make([]byte, outBytes)
	procErr := kernel.Process(req.Input, out)
	tend := h.session.MonotonicNS()

	if procErr != nil {
		h.log.WithError(procErr).Error("kernel process failed")
		_ = h.session.SendError(seq, cortexerr.KindKernelCrash, procErr.Error())
		return cortexerr.Wrap(cortexerr.KindKernelCrash, "adapterhost.serveWindow", procErr)
	}

	tfirstTx := h.session.MonotonicNS()
	result := protocol.Result{
		Tin:      req.TinNs,
		Tstart:   tstart,
		Tend:     tend,
		TfirstTx: tfirstTx,
		TlastTx:  tfirstTx,
		Output:   out,
	}
	return h.session.SendResult(seq, result)
}

