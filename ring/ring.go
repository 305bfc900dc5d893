// Package ring implements the scheduler's single-producer/single-consumer
// sample ring (§3.3, §4.6, design note "Ring buffer"). It is append-hop,
// snapshot-contiguous-window only: no general-purpose queue semantics.
package ring

// Ring holds the last windowSamples samples (time-major, channel-interleaved)
// across a fixed number of channels. A single producer calls Append once per
// hop; a single consumer calls Snapshot to linearize the last windowSamples
// samples into a caller-supplied contiguous buffer.
type Ring struct {
	channels      int
	windowSamples int
	buf           []float32 // capacity windowSamples*channels, circular by sample row
	writeRow      int       // next row to write, mod windowSamples
	filledRows    int       // total distinct rows ever written, capped at windowSamples for "full" check
	totalWritten  uint64    // total samples rows ever appended (uncapped, for warmup/flush accounting)
}

// New allocates a ring for the given window length (in samples) and channel
// count.
func New(windowSamples, channels int) *Ring {
	if windowSamples <= 0 || channels <= 0 {
		panic("ring: windowSamples and channels must be > 0")
	}
	return &Ring{
		channels:      channels,
		windowSamples: windowSamples,
		buf:           make([]float32, windowSamples*channels),
	}
}

// Append writes a hop of hopRows new sample rows (row-major, channels-wide)
// into the ring, overwriting the oldest rows cyclically.
func (r *Ring) Append(hop []float32) {
	if len(hop)%r.channels != 0 {
		panic("ring: hop length is not a multiple of channel count")
	}
	hopRows := len(hop) / r.channels
	for row := 0; row < hopRows; row++ {
		src := hop[row*r.channels : (row+1)*r.channels]
		dst := r.buf[r.writeRow*r.channels : (r.writeRow+1)*r.channels]
		copy(dst, src)
		r.writeRow = (r.writeRow + 1) % r.windowSamples
		if r.filledRows < r.windowSamples {
			r.filledRows++
		}
	}
	r.totalWritten += uint64(hopRows)
}

// Full reports whether the ring has received at least windowSamples rows
// since creation (§4.6 step 2: "if total samples received < W, emit
// nothing").
func (r *Ring) Full() bool {
	return r.filledRows >= r.windowSamples
}

// TotalWritten is the cumulative count of sample rows ever appended.
func (r *Ring) TotalWritten() uint64 {
	return r.totalWritten
}

// Snapshot linearizes the ring's current windowSamples rows, oldest first,
// into dst (which must be windowSamples*channels elements long).
func (r *Ring) Snapshot(dst []float32) {
	if len(dst) != r.windowSamples*r.channels {
		panic("ring: snapshot destination has wrong length")
	}
	// writeRow is the index of the next row to be overwritten, i.e. the
	// oldest row currently held (once the ring is full).
	oldest := r.writeRow
	for i := 0; i < r.windowSamples; i++ {
		srcRow := (oldest + i) % r.windowSamples
		copy(dst[i*r.channels:(i+1)*r.channels], r.buf[srcRow*r.channels:(srcRow+1)*r.channels])
	}
}

// Channels returns the configured channel count.
func (r *Ring) Channels() int { return r.channels }

// WindowSamples returns the configured window length in samples.
func (r *Ring) WindowSamples() int { return r.windowSamples }
