//go:build !windows

package kernelabi

/*
#cgo linux LDFLAGS: -ldl
#include <dlfcn.h>
#include <stdlib.h>
#include "shim.h"
*/
import "C"

import (
	"fmt"
	"unsafe"

	"github.com/sirupsen/logrus"
)

// Plugin is a dlopen'd kernel shared object, resolved to its four C-ABI
// entry points (§3.2: init/process/teardown, optional calibrate).
type Plugin struct {
	handle      unsafe.Pointer
	initFn      C.cortex_init_fn
	processFn   C.cortex_process_fn
	teardownFn  C.cortex_teardown_fn
	calibrateFn C.cortex_calibrate_fn
	path        string
}

// LoadPlugin dlopens path and resolves the required cortex_kernel_* symbols.
// cortex_kernel_calibrate is optional; its absence only disables Calibrator.
func LoadPlugin(path string) (*Plugin, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.dlopen(cpath, C.RTLD_NOW|C.RTLD_LOCAL)
	if handle == nil {
		return nil, fmt.Errorf("kernelabi: dlopen %s: %s", path, C.GoString(C.dlerror()))
	}

	p := &Plugin{handle: handle, path: path}

	initSym := mustDlsym(handle, "cortex_kernel_init")
	if initSym == nil {
		C.dlclose(handle)
		return nil, fmt.Errorf("kernelabi: %s: missing symbol cortex_kernel_init", path)
	}
	p.initFn = C.cortex_init_fn(initSym)

	processSym := mustDlsym(handle, "cortex_kernel_process")
	if processSym == nil {
		C.dlclose(handle)
		return nil, fmt.Errorf("kernelabi: %s: missing symbol cortex_kernel_process", path)
	}
	p.processFn = C.cortex_process_fn(processSym)

	teardownSym := mustDlsym(handle, "cortex_kernel_teardown")
	if teardownSym == nil {
		C.dlclose(handle)
		return nil, fmt.Errorf("kernelabi: %s: missing symbol cortex_kernel_teardown", path)
	}
	p.teardownFn = C.cortex_teardown_fn(teardownSym)

	if calibrateSym := mustDlsym(handle, "cortex_kernel_calibrate"); calibrateSym != nil {
		p.calibrateFn = C.cortex_calibrate_fn(calibrateSym)
	} else {
		logrus.Debugf("kernelabi: %s: no cortex_kernel_calibrate symbol, calibration disabled", path)
	}

	return p, nil
}

func mustDlsym(handle unsafe.Pointer, name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	C.dlerror() // clear any pending error
	sym := C.dlsym(handle, cname)
	if sym == nil && C.dlerror() != nil {
		return nil
	}
	return sym
}

// Close dlcloses the shared object. Callers must Teardown the kernel first.
func (p *Plugin) Close() error {
	if C.dlclose(p.handle) != 0 {
		return fmt.Errorf("kernelabi: dlclose %s: %s", p.path, C.GoString(C.dlerror()))
	}
	return nil
}

// Kernel returns a Kernel bound to this plugin's entry points. It also
// implements Calibrator; Calibrate returns an error unless the plugin
// exports cortex_kernel_calibrate.
func (p *Plugin) Kernel() *pluginKernel {
	return &pluginKernel{plugin: p}
}

// pluginKernel adapts a dlopen'd Plugin to the Kernel interface, marshaling
// Config into the fixed C struct layout and invoking through the cgo shim
// trampolines (Go cannot call an arbitrary C function pointer directly).
type pluginKernel struct {
	plugin      *Plugin
	handle      unsafe.Pointer
	windowBytes int
}

func (k *pluginKernel) Init(cfg Config) (InitResult, error) {
	var paramsPtr *C.char
	if len(cfg.RawParams) > 0 {
		paramsPtr = (*C.char)(unsafe.Pointer(&cfg.RawParams[0]))
	}

	cCfg := C.cortex_config_t{
		sample_rate_hz: C.uint32_t(cfg.SampleRateHz),
		window_samples: C.uint32_t(cfg.WindowSamples),
		hop_samples:    C.uint32_t(cfg.HopSamples),
		channels:       C.uint32_t(cfg.Channels),
		dtype:          C.uint8_t(cfg.DType),
		params:         paramsPtr,
		params_len:     C.size_t(len(cfg.RawParams)),
	}

	var cHandle unsafe.Pointer
	var cResult C.cortex_init_result_t
	status := C.cortex_invoke_init(k.plugin.initFn, &cCfg, &cHandle, &cResult)
	if status != 0 {
		return InitResult{}, fmt.Errorf("kernelabi: plugin %s init returned status %d", k.plugin.path, int32(status))
	}
	if cHandle == nil {
		return InitResult{}, fmt.Errorf("kernelabi: plugin %s init returned a null handle", k.plugin.path)
	}
	k.handle = cHandle
	k.windowBytes = int(cfg.WindowSamples) * int(cfg.Channels) * cfg.DType.Size()

	return InitResult{
		OutputWindowSamples: uint32(cResult.output_window_samples),
		OutputChannels:      uint32(cResult.output_channels),
		Capabilities:        Capabilities(cResult.capabilities),
	}, nil
}

func (k *pluginKernel) Process(in, out []byte) error {
	var inPtr, outPtr *C.uint8_t
	if len(in) > 0 {
		inPtr = (*C.uint8_t)(unsafe.Pointer(&in[0]))
	}
	if len(out) > 0 {
		outPtr = (*C.uint8_t)(unsafe.Pointer(&out[0]))
	}
	status := C.cortex_invoke_process(k.plugin.processFn, k.handle, inPtr, C.size_t(len(in)), outPtr, C.size_t(len(out)))
	if status != 0 {
		return fmt.Errorf("kernelabi: plugin %s process returned status %d", k.plugin.path, int32(status))
	}
	return nil
}

func (k *pluginKernel) Teardown() {
	if k.handle != nil {
		C.cortex_invoke_teardown(k.plugin.teardownFn, k.handle)
		k.handle = nil
	}
}

// Calibrate invokes the plugin's calibrate entry point. Callers must check
// SupportsCalibrate before using this, as the symbol is optional.
func (k *pluginKernel) Calibrate(payload []byte) ([]byte, error) {
	if k.plugin.calibrateFn == nil {
		return nil, fmt.Errorf("kernelabi: plugin %s does not export cortex_kernel_calibrate", k.plugin.path)
	}
	var inPtr *C.uint8_t
	if len(payload) > 0 {
		inPtr = (*C.uint8_t)(unsafe.Pointer(&payload[0]))
	}
	var outPtr *C.uint8_t
	var outLen C.size_t
	status := C.cortex_invoke_calibrate(k.plugin.calibrateFn, k.handle, inPtr, C.size_t(len(payload)), &outPtr, &outLen)
	if status != 0 {
		return nil, fmt.Errorf("kernelabi: plugin %s calibrate returned status %d", k.plugin.path, int32(status))
	}
	if outPtr == nil || outLen == 0 {
		return nil, nil
	}
	return C.GoBytes(unsafe.Pointer(outPtr), C.int(outLen)), nil
}

// SupportsCalibrate reports whether the underlying plugin exports
// cortex_kernel_calibrate.
func (k *pluginKernel) SupportsCalibrate() bool {
	return k.plugin.calibrateFn != nil
}
