// Package scheduler implements the windowing scheduler of §4.6: it owns
// the sample ring, forms one window per hop, dispatches it to a Runner
// (in-process kernel or remote adapter), and records a telemetry row per
// window, with warmup marking and fatal-error abort semantics.
package scheduler

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/westonvoglesonger/cortex/cortexerr"
	"github.com/westonvoglesonger/cortex/ring"
	"github.com/westonvoglesonger/cortex/streamcfg"
	"github.com/westonvoglesonger/cortex/telemetry"
	"github.com/westonvoglesonger/cortex/wire"
)

// Runner executes one window's worth of samples and returns its output
// plus whatever device-side timing it has (zero-valued for an in-process
// kernel, populated for a remote adapter via protocol.Result).
type Runner interface {
	// RunWindow processes input (window samples, channel-interleaved
	// float32) and returns output plus timing. tin/tstart/tend/tfirstTx/
	// tlastTx are zero when the runner has no device-side clock.
	RunWindow(input []float32) (output []byte, tin, tstart, tend, tfirstTx, tlastTx uint64, err error)
}

// TCPDiagnosable is implemented by a Runner that can additionally report
// kernel-tracked TCP statistics for its underlying connection. RemoteRunner
// implements this and reports a sample only when its transport is TCP;
// InProcessRunner doesn't. Feed leaves the diagnostic fields zero whenever
// no sample is reported.
type TCPDiagnosable interface {
	SampleTCPInfo() (rttNs uint64, retransmits, totalRetrans uint32, ok bool)
}

// Clock supplies monotonic timestamps for release/deadline/start/end
// accounting, decoupling the scheduler from a concrete transport so it can
// be driven by a fake clock in tests.
type Clock interface {
	NowNS() uint64
}

// SystemClock reads the monotonic component of time.Now relative to an
// arbitrary process-start epoch, matching transport.nowMonotonicNS's
// contract (§5: "never from wall clock").
type SystemClock struct{ epoch time.Time }

// NewSystemClock captures the current instant as the epoch.
func NewSystemClock() SystemClock { return SystemClock{epoch: time.Now()} }

// NowNS implements Clock.
func (c SystemClock) NowNS() uint64 { return uint64(time.Since(c.epoch).Nanoseconds()) }

// Scheduler forms and dispatches windows as hops arrive from the pacer,
// writing one telemetry row per window.
type Scheduler struct {
	cfg        streamcfg.Config
	runner     Runner
	sink       *telemetry.Sink
	clock      Clock
	log        *logrus.Entry
	pluginName string
	runID      uint64

	buf          *ring.Ring
	windowIndex  uint64
	warmupHops   uint64
	warmupRemain uint64
	exporter     *telemetry.Exporter

	// FatalErr is set the first time a window dispatch returns a fatal
	// error; callers check this after Feed returns false to decide
	// whether to abort the run.
	FatalErr error
}

// New builds a Scheduler. warmupSeconds converts to a hop count via
// cfg.SampleRateHz/cfg.HopSamples, rounded up, per §4.6 ("the first
// warmup_seconds of hops are marked warmup=true but still counted").
func New(cfg streamcfg.Config, runID uint64, pluginName string, runner Runner, sink *telemetry.Sink, clock Clock, log *logrus.Entry) *Scheduler {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	hopsPerSecond := float64(cfg.SampleRateHz) / float64(cfg.HopSamples)
	warmupHops := uint64(float64(cfg.WarmupSeconds)*hopsPerSecond + 0.999999)
	return &Scheduler{
		cfg:          cfg,
		runner:       runner,
		sink:         sink,
		clock:        clock,
		log:          log.WithField("component", "scheduler"),
		pluginName:   pluginName,
		runID:        runID,
		buf:          ring.New(int(cfg.WindowLengthSamples), int(cfg.Channels)),
		warmupHops:   warmupHops,
		warmupRemain: warmupHops,
	}
}

// Feed is the pacer's per-hop callback target (called from a
// pacer.ChunkFunc closure, since it also returns a bool). It appends the
// hop to the ring and,
// once the ring holds a full window, dispatches it. It returns false once
// a fatal error has occurred; the caller must stop feeding and check
// FatalErr.
func (s *Scheduler) Feed(data []float32, nSamples int) bool {
	if s.FatalErr != nil {
		return false
	}
	releaseTS := s.clock.NowNS()
	s.buf.Append(data[:nSamples*int(s.cfg.Channels)])
	if !s.buf.Full() {
		return true
	}

	window := make([]float32, s.cfg.WindowLengthSamples*s.cfg.Channels)
	s.buf.Snapshot(window)

	deadline := releaseTS + uint64(s.cfg.NominalDeadline().Nanoseconds())
	startTS := s.clock.NowNS()

	_, devTin, devTstart, devTend, devTfirstTx, devTlastTx, err := s.runner.RunWindow(window)
	endTS := s.clock.NowNS()

	warmup := s.warmupRemain > 0
	if warmup {
		s.warmupRemain--
	}

	row := telemetry.WindowRow{
		RunID:            s.runID,
		PluginName:       s.pluginName,
		WindowIndex:      s.windowIndex,
		ReleaseTSNs:      releaseTS,
		DeadlineTSNs:     deadline,
		StartTSNs:        startTS,
		EndTSNs:          endTS,
		DeadlineMissed:   endTS > deadline,
		W:                s.cfg.WindowLengthSamples,
		H:                s.cfg.HopSamples,
		C:                s.cfg.Channels,
		Fs:               s.cfg.SampleRateHz,
		Warmup:           warmup,
		DeviceTinNs:      devTin,
		DeviceTstartNs:   devTstart,
		DeviceTendNs:     devTend,
		DeviceTfirstTxNs: devTfirstTx,
		DeviceTlastTxNs:  devTlastTx,
	}
	if diag, ok := s.runner.(TCPDiagnosable); ok {
		if rttNs, retransmits, totalRetrans, sampled := diag.SampleTCPInfo(); sampled {
			row.TCPRTTNs = rttNs
			row.TCPRetransmits = retransmits
			row.TCPTotalRetrans = totalRetrans
		}
	}
	s.windowIndex++

	if err != nil {
		s.FatalErr = err
		s.writeErrorRecord(err)
		return false
	}
	if row.DeadlineMissed {
		s.log.WithField("window_index", row.WindowIndex).Warn("deadline missed")
	}
	if s.sink != nil {
		if err := s.sink.WriteRow(row); err != nil {
			s.log.WithError(err).Error("failed to write window telemetry row")
		}
	}
	if s.exporter != nil {
		s.exporter.Observe(row)
	}
	return true
}

// Flush marks the scheduler as having reached end-of-stream. Per §4.6's
// flush rule, a partially-filled ring at end-of-stream never emits a final
// window; Flush only exists so callers have an explicit point to call
// after the pacer stops, for symmetry with Feed. There is nothing to drain.
func (s *Scheduler) Flush() {
	s.log.WithField("total_hops", s.buf.TotalWritten()).Info("stream ended, no partial window emitted")
}

// WindowIndex reports how many windows have been dispatched so far.
func (s *Scheduler) WindowIndex() uint64 { return s.windowIndex }

// SetExporter attaches a live Prometheus exporter; every window dispatched
// after this call also gets observed by exp, alongside the write to sink.
// Passing nil detaches it.
func (s *Scheduler) SetExporter(exp *telemetry.Exporter) { s.exporter = exp }

func (s *Scheduler) writeErrorRecord(err error) {
	if s.sink == nil {
		return
	}
	kind := cortexerr.KindIO
	op := "scheduler.Feed"
	if ce, ok := err.(*cortexerr.CortexError); ok {
		kind = ce.Kind
		op = ce.Op
	}
	rec := telemetry.ErrorRecord{
		Kind:        kind.String(),
		Op:          op,
		Message:     err.Error(),
		WindowIndex: s.windowIndex - 1,
	}
	if werr := s.sink.WriteError(rec); werr != nil {
		s.log.WithError(werr).Error("failed to write fatal error telemetry record")
	}
}

// EncodeWindowFloat32 serializes a float32 window into little-endian bytes
// for a byte-oriented Kernel/wire boundary. Only Float32 streams are
// supported end-to-end today (§6: Q15/Q7 are reserved enumerants; no
// encoder exists for them yet).
func EncodeWindowFloat32(window []float32) ([]byte, error) {
	buf := make([]byte, len(window)*4)
	for i, v := range window {
		wire.PutF32(buf[i*4:i*4+4], v)
	}
	return buf, nil
}

// DecodeWindowFloat32 is EncodeWindowFloat32's inverse, for in-process
// kernels that hand back a byte buffer the scheduler never needs to
// reinterpret numerically but callers may want decoded for assertions.
func DecodeWindowFloat32(buf []byte) ([]float32, error) {
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("scheduler: buffer length %d is not a multiple of 4", len(buf))
	}
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = wire.F32(buf[i*4 : i*4+4])
	}
	return out, nil
}
