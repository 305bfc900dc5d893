// Package sysinfo gathers the host/OS/CPU/RAM/thermal fields of the
// telemetry sink's leading system-info record (§3.4, §6.3). Kernel version
// detection uses github.com/docker/docker/pkg/parsers/kernel; RAM and
// thermal readings live in build-tagged sibling files: a Linux
// implementation, and a fallback reporting nothing on every other GOOS.
package sysinfo

import (
	"os"
	"runtime"

	"github.com/westonvoglesonger/cortex/telemetry"
)

// Gather builds a telemetry.SystemInfo snapshot for the current host.
func Gather() telemetry.SystemInfo {
	host, _ := os.Hostname()
	info := telemetry.SystemInfo{
		Host:     host,
		OS:       runtime.GOOS,
		CPUCount: runtime.NumCPU(),
	}
	info.KernelVer = kernelVersion()
	info.RAMBytes = ramBytes()
	if c, ok := thermalCelsius(); ok {
		info.ThermalC = c
		info.HasThermal = true
	}
	return info
}
