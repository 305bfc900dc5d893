package pacer

import (
	"encoding/binary"
	"math"
	"os"
	"testing"
	"time"

	"github.com/westonvoglesonger/cortex/streamcfg"
)

func writeRampFile(t *testing.T, rows, channels int) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "ramp-*.f32")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer f.Close()

	buf := make([]byte, 4)
	n := 0
	for r := 0; r < rows; r++ {
		for c := 0; c < channels; c++ {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(n)))
			if _, err := f.Write(buf); err != nil {
				t.Fatalf("Write: %v", err)
			}
			n++
		}
	}
	return f.Name()
}

type neverShutdown struct{}

func (neverShutdown) Requested() bool { return false }

type afterNPoller struct {
	remaining int
}

func (p *afterNPoller) Requested() bool {
	p.remaining--
	return p.remaining <= 0
}

// TestRewindOnEOF: a file with exactly 5 hops, run for 13 hops, chunk 6
// equals chunk 1, etc (§8.2 scenario 5).
func TestRewindOnEOF(t *testing.T) {
	const channels = 2
	const hop = 4
	const hops = 5
	path := writeRampFile(t, hop*hops, channels)

	cfg := streamcfg.Config{
		SampleRateHz:        1000000, // fast, so the test doesn't actually wait ~real time
		WindowLengthSamples: hop,
		HopSamples:          hop,
		Channels:            channels,
		DType:               streamcfg.Float32,
	}

	var chunks [][]float32
	onChunk := func(data []float32, n int) {
		cp := make([]float32, len(data))
		copy(cp, data)
		chunks = append(chunks, cp)
	}

	poller := &afterNPoller{remaining: 14}
	p, err := Open(path, cfg, onChunk, poller, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(chunks) != 13 {
		t.Fatalf("got %d chunks, want 13", len(chunks))
	}
	// chunk[5] (6th, 0-indexed) must equal chunk[0]; chunk[10] equals chunk[0]; chunk[12] equals chunk[2].
	assertEqualChunks(t, chunks[0], chunks[5])
	assertEqualChunks(t, chunks[0], chunks[10])
	assertEqualChunks(t, chunks[2], chunks[12])
}

func assertEqualChunks(t *testing.T, a, b []float32) {
	t.Helper()
	if len(a) != len(b) {
		t.Fatalf("length mismatch: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk mismatch at %d: %v != %v", i, a[i], b[i])
		}
	}
}

// TestHopCadence checks the mean inter-chunk interval is within 10% of
// hop/Fs for a run of >= 20 chunks (§8.1 property 1).
func TestHopCadence(t *testing.T) {
	if testing.Short() {
		t.Skip("timing test skipped in -short mode")
	}
	const channels = 1
	const hop = 10
	path := writeRampFile(t, hop*3, channels)

	cfg := streamcfg.Config{
		SampleRateHz:        1000, // 10ms hop period
		WindowLengthSamples: hop,
		HopSamples:          hop,
		Channels:            channels,
		DType:               streamcfg.Float32,
	}

	var timestamps []time.Time
	onChunk := func(data []float32, n int) {
		timestamps = append(timestamps, time.Now())
	}

	poller := &afterNPoller{remaining: 21}
	p, err := Open(path, cfg, onChunk, poller, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer p.Close()

	if err := p.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(timestamps) < 20 {
		t.Fatalf("got %d chunks, want >= 20", len(timestamps))
	}
	total := timestamps[len(timestamps)-1].Sub(timestamps[0])
	mean := total / time.Duration(len(timestamps)-1)
	want := 10 * time.Millisecond
	tolerance := want / 10 // 10%
	if mean < want-tolerance || mean > want+tolerance {
		t.Fatalf("mean period %v not within 10%% of %v", mean, want)
	}
}
