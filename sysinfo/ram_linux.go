//go:build linux

package sysinfo

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ramBytes reads total installed RAM via the sysinfo(2) syscall.
func ramBytes() uint64 {
	var si unix.Sysinfo_t
	if err := unix.Sysinfo(&si); err != nil {
		return 0
	}
	return uint64(si.Totalram) * uint64(si.Unit)
}

// thermalCelsius reads the first available thermal zone under
// /sys/class/thermal, if any. Not every host exposes one (containers,
// VMs), so absence is not an error.
func thermalCelsius() (float64, bool) {
	for i := 0; i < 8; i++ {
		path := "/sys/class/thermal/thermal_zone" + strconv.Itoa(i) + "/temp"
		b, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		milliC, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
		if err != nil {
			continue
		}
		return float64(milliC) / 1000.0, true
	}
	return 0, false
}
