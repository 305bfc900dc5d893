//go:build !windows

package main

import "github.com/westonvoglesonger/cortex/kernelabi"

// loadPluginKernel dlopens path and returns its Kernel, valid for the
// lifetime of the returned value's Teardown call.
func loadPluginKernel(path string) (kernelabi.Kernel, error) {
	plugin, err := kernelabi.LoadPlugin(path)
	if err != nil {
		return nil, err
	}
	return plugin.Kernel(), nil
}
