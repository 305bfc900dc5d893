//go:build windows

package main

import (
	"fmt"

	"github.com/westonvoglesonger/cortex/kernelabi"
)

// loadPluginKernel is unavailable on Windows; dlopen'd kernel plugins
// require the cgo shim, which is not built for this platform (§4.4: use
// the in-process identity kernel or a Windows-native in-process Kernel
// implementation instead).
func loadPluginKernel(path string) (kernelabi.Kernel, error) {
	return nil, fmt.Errorf("cortex-adapter: plugin %q: %w", path, kernelabi.ErrPluginsUnsupported)
}
