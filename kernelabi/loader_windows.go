//go:build windows

package kernelabi

import "errors"

// ErrPluginsUnsupported is returned by LoadPlugin on platforms without the
// cgo dlopen shim wired up (Windows; use an in-process Kernel there).
var ErrPluginsUnsupported = errors.New("kernelabi: dlopen'd kernel plugins are not supported on windows")

// Plugin is an unusable placeholder on Windows.
type Plugin struct{}

// LoadPlugin always fails on Windows.
func LoadPlugin(_ string) (*Plugin, error) {
	return nil, ErrPluginsUnsupported
}

func (p *Plugin) Close() error { return nil }
