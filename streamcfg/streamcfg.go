// Package streamcfg holds the immutable stream configuration for a CORTEX
// run (§3.1) and its overflow-safe validation. Parsing this struct out of a
// YAML file or CLI flags is orchestration glue and lives outside this
// module (§1); this package only validates a struct already populated by
// that glue.
package streamcfg

import (
	"fmt"
	"math"
	"time"
)

// DType identifies the element type of a sample stream. Only Float32 is
// required by kernels; Q15/Q7 are reserved enumerants carrying element size
// for forward compatibility.
type DType uint8

const (
	Float32 DType = iota
	Q15
	Q7
)

// Size reports sizeof(dtype) in bytes.
func (d DType) Size() int {
	switch d {
	case Float32:
		return 4
	case Q15:
		return 2
	case Q7:
		return 1
	default:
		return 0
	}
}

func (d DType) String() string {
	switch d {
	case Float32:
		return "float32"
	case Q15:
		return "q15"
	case Q7:
		return "q7"
	default:
		return "unknown"
	}
}

// Config is the immutable stream configuration for one kernel run (§3.1).
type Config struct {
	SampleRateHz        uint32 // Fs, > 0
	WindowLengthSamples uint32 // W, > 0
	HopSamples          uint32 // H, 0 < H <= W
	Channels            uint32 // C, > 0
	DType               DType
	WarmupSeconds       uint32
	DeadlineMargin      time.Duration
}

// Validate enforces the invariants of §3.1: H <= W, and every relevant
// size product fits within a 64-bit unsigned range without overflow.
func (c Config) Validate() error {
	if c.SampleRateHz == 0 {
		return fmt.Errorf("streamcfg: sample_rate_hz must be > 0")
	}
	if c.WindowLengthSamples == 0 {
		return fmt.Errorf("streamcfg: window_length_samples must be > 0")
	}
	if c.HopSamples == 0 {
		return fmt.Errorf("streamcfg: hop_samples must be > 0")
	}
	if c.HopSamples > c.WindowLengthSamples {
		return fmt.Errorf("streamcfg: hop_samples (%d) must be <= window_length_samples (%d)", c.HopSamples, c.WindowLengthSamples)
	}
	if c.Channels == 0 {
		return fmt.Errorf("streamcfg: channels must be > 0")
	}
	elemSize := uint64(c.DType.Size())
	if elemSize == 0 {
		return fmt.Errorf("streamcfg: unrecognized dtype %v", c.DType)
	}

	if _, err := mulOverflow(uint64(c.WindowLengthSamples), uint64(c.Channels), elemSize); err != nil {
		return fmt.Errorf("streamcfg: window_length_samples * channels * sizeof(dtype) overflows: %w", err)
	}
	if _, err := mulOverflow(uint64(c.HopSamples), uint64(c.Channels), elemSize); err != nil {
		return fmt.Errorf("streamcfg: hop_samples * channels * sizeof(dtype) overflows: %w", err)
	}
	// Guard against overflow of W*Fs*C multiplied by plausible run seconds;
	// we can't know run duration here, so we conservatively require the
	// triple product itself to fit in 63 bits, leaving 1 bit of headroom
	// for a seconds multiplier before a real u64 overflow could occur.
	triple, err := mulOverflow(uint64(c.WindowLengthSamples), uint64(c.SampleRateHz), uint64(c.Channels))
	if err != nil {
		return fmt.Errorf("streamcfg: window_length_samples * sample_rate_hz * channels overflows: %w", err)
	}
	if triple > math.MaxInt64 {
		return fmt.Errorf("streamcfg: window_length_samples * sample_rate_hz * channels too large")
	}
	return nil
}

// mulOverflow multiplies the given factors, returning an error if the
// result would overflow a uint64.
func mulOverflow(factors ...uint64) (uint64, error) {
	result := uint64(1)
	for _, f := range factors {
		if f == 0 {
			return 0, nil
		}
		if result > math.MaxUint64/f {
			return 0, fmt.Errorf("overflow multiplying %v", factors)
		}
		result *= f
	}
	return result, nil
}

// WindowBytes is W*C*sizeof(dtype).
func (c Config) WindowBytes() uint64 {
	return uint64(c.WindowLengthSamples) * uint64(c.Channels) * uint64(c.DType.Size())
}

// HopBytes is H*C*sizeof(dtype).
func (c Config) HopBytes() uint64 {
	return uint64(c.HopSamples) * uint64(c.Channels) * uint64(c.DType.Size())
}

// NominalDeadline is H/Fs plus the configured margin.
func (c Config) NominalDeadline() time.Duration {
	return time.Duration(float64(c.HopSamples)/float64(c.SampleRateHz)*float64(time.Second)) + c.DeadlineMargin
}
