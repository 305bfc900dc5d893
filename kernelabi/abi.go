// Package kernelabi implements the in-process/out-of-process kernel
// contract of §3: a fixed-layout Config, an opaque per-instance handle, and
// the init/process/teardown (+ optional calibrate) function set every
// kernel plugin implements at ABI version 3.
package kernelabi

import "github.com/westonvoglesonger/cortex/streamcfg"

// Version is the single kernel ABI version this package speaks.
const Version uint8 = 3

// Capabilities is a bitset the kernel reports at init time.
type Capabilities uint32

const (
	// CapCalibrate means the kernel implements Calibrator.
	CapCalibrate Capabilities = 1 << iota
	// CapVariableOutput means output_channels/output_window_samples may
	// differ from the input window shape (e.g. a band-power reduction).
	CapVariableOutput
)

// Config is the fixed-layout parameter block passed to Init, mirroring the
// wire CONFIG payload's numeric fields (§4.3.1) plus the decoded
// plugin_params accessor (§3.3).
type Config struct {
	SampleRateHz  uint32
	WindowSamples uint32
	HopSamples    uint32
	Channels      uint32
	DType         streamcfg.DType
	// RawParams is the undecoded plugin_params blob from the CONFIG
	// frame, passed straight through to a dlopen'd plugin's C ABI. Params
	// is the same data decoded for Go kernels via ParseParams.
	RawParams []byte
	Params    *Params
}

// InitResult is what a kernel's Init returns: the output window shape it
// will produce and its capability bits.
type InitResult struct {
	OutputWindowSamples uint32
	OutputChannels      uint32
	Capabilities        Capabilities
}

// Kernel is the contract every in-process or dlopen'd-plugin kernel
// implements (§3.2). Process must be hermetic: no allocation, no I/O, no
// blocking, and no observable side effect besides writing to out.
type Kernel interface {
	// Init validates cfg and prepares internal state, returning the
	// output shape. A non-nil error rejects the config (CONFIG_ACK
	// status != 0 at the adapter boundary).
	Init(cfg Config) (InitResult, error)
	// Process computes one window's output into out, given one window's
	// input samples in. Both slices are owned by the caller and are
	// reused across calls; Process must not retain them.
	Process(in, out []byte) error
	// Teardown releases any resources acquired by Init.
	Teardown()
}

// Calibrator is an optional extension a Kernel may implement when its
// CapCalibrate bit is set (§3.3).
type Calibrator interface {
	// Calibrate consumes a calibration envelope's payload and returns an
	// opaque state blob to persist across the kernel's lifetime.
	Calibrate(payload []byte) ([]byte, error)
}
