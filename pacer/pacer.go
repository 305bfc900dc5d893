// Package pacer implements the real-time replay pacer (§4.5): it streams a
// flat N×C sample file and invokes a per-hop callback at hop/Fs monotonic
// cadence, looping on EOF.
package pacer

import (
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/westonvoglesonger/cortex/streamcfg"
	"github.com/westonvoglesonger/cortex/wire"
)

// ChunkFunc is invoked once per hop on the pacer's own goroutine. It MUST
// NOT block longer than one hop period (§4.5 callback contract). data is
// reused by the pacer after the call returns and must not be retained.
type ChunkFunc func(data []float32, nSamples int)

// ShutdownPoller is polled after every chunk; when it reports true the
// pacer exits cleanly. Typically *shutdown.Coordinator.
type ShutdownPoller interface {
	Requested() bool
}

// Pacer streams hop-sized chunks from a flat sample file at nominal
// hop/Fs cadence, rewinding to the start on EOF.
type Pacer struct {
	file     *os.File
	cfg      streamcfg.Config
	hopPeriod time.Duration
	onChunk  ChunkFunc
	shutdown ShutdownPoller
	log      *logrus.Entry

	hopRowBytes int64
	fileRows    int64 // total whole rows in the file, for EOF math
}

// Open opens path as the sample source for cfg and returns a Pacer ready to
// Run. The file's length is truncated down to a whole number of rows;
// trailing partial rows are ignored forever (§4.5, §6.2).
func Open(path string, cfg streamcfg.Config, onChunk ChunkFunc, shutdown ShutdownPoller, log *logrus.Entry) (*Pacer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rowBytes := int64(cfg.Channels) * int64(cfg.DType.Size())
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	fileRows := info.Size() / rowBytes
	if fileRows == 0 {
		f.Close()
		return nil, io.ErrUnexpectedEOF
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pacer{
		file:        f,
		cfg:         cfg,
		hopPeriod:   time.Duration(float64(cfg.HopSamples) / float64(cfg.SampleRateHz) * float64(time.Second)),
		onChunk:     onChunk,
		shutdown:    shutdown,
		log:         log.WithField("component", "pacer"),
		hopRowBytes: rowBytes,
		fileRows:    fileRows,
	}, nil
}

// Close releases the underlying file handle.
func (p *Pacer) Close() error {
	return p.file.Close()
}

// Run streams hops until the shutdown flag is observed. The k-th chunk's
// delivery target is t0 + k*hop/Fs; Run sleeps until each deadline using
// the monotonic component of time.Time, per §4.5.
func (p *Pacer) Run() error {
	hopRows := int64(p.cfg.HopSamples)
	raw := make([]byte, hopRows*p.hopRowBytes)
	samples := make([]float32, hopRows*int64(p.cfg.Channels))

	var cursorRow int64
	t0 := time.Now()
	var k int64

	for {
		if p.shutdown != nil && p.shutdown.Requested() {
			p.log.Info("shutdown observed, stopping pacer")
			return nil
		}

		if cursorRow+hopRows > p.fileRows {
			// Not enough whole rows left for a full hop: rewind and
			// discard the partial remainder without emitting it.
			if _, err := p.file.Seek(0, io.SeekStart); err != nil {
				return err
			}
			cursorRow = 0
		}

		if _, err := io.ReadFull(p.file, raw); err != nil {
			return err
		}
		cursorRow += hopRows
		decodeFloat32LE(raw, samples)

		target := t0.Add(time.Duration(k) * p.hopPeriod)
		if d := time.Until(target); d > 0 {
			time.Sleep(d)
		}

		p.onChunk(samples, int(hopRows))
		k++
	}
}

func decodeFloat32LE(raw []byte, out []float32) {
	for i := range out {
		out[i] = wire.F32(raw[i*4 : i*4+4])
	}
}
