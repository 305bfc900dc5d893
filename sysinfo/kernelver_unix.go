//go:build linux || freebsd || openbsd || darwin || netbsd || dragonfly
// +build linux freebsd openbsd darwin netbsd dragonfly

package sysinfo

import (
	"github.com/docker/docker/pkg/parsers/kernel"
)

// kernelVersion reports the running kernel's version string, e.g.
// "5.15.0-generic".
func kernelVersion() string {
	v, err := kernel.GetKernelVersion()
	if err != nil {
		return ""
	}
	return v.String()
}
