// Package telemetry implements the append-only, newline-delimited
// telemetry sink of §3.4/§4.9/§6.3, plus a supplemental live Prometheus
// exporter for realtime monitoring of an in-flight run.
package telemetry

// SystemInfo is the leading record of a telemetry file, written once
// before any window row (§3.4, §6.3).
type SystemInfo struct {
	Type        string  `json:"_type"` // always "system_info"
	Host        string  `json:"host"`
	OS          string  `json:"os"`
	KernelVer   string  `json:"kernel_version,omitempty"`
	CPUCount    int     `json:"cpu_count"`
	RAMBytes    uint64  `json:"ram_bytes"`
	ThermalC    float64 `json:"thermal_celsius,omitempty"`
	HasThermal  bool    `json:"-"`
}

// WindowRow is one per-window telemetry record (§3.4).
type WindowRow struct {
	Type string `json:"_type"` // always "window"

	RunID         uint64 `json:"run_id"`
	PluginName    string `json:"plugin_name"`
	WindowIndex   uint64 `json:"window_index"`
	ReleaseTSNs   uint64 `json:"release_ts_ns"`
	DeadlineTSNs  uint64 `json:"deadline_ts_ns"`
	StartTSNs     uint64 `json:"start_ts_ns"`
	EndTSNs       uint64 `json:"end_ts_ns"`
	DeadlineMissed bool  `json:"deadline_missed"`

	W  uint32 `json:"w"`
	H  uint32 `json:"h"`
	C  uint32 `json:"c"`
	Fs uint32 `json:"fs"`

	Warmup bool   `json:"warmup"`
	Repeat uint32 `json:"repeat"`

	// Remote execution fields; zero when the kernel ran in-process.
	DeviceTinNs      uint64 `json:"device_tin_ns,omitempty"`
	DeviceTstartNs   uint64 `json:"device_tstart_ns,omitempty"`
	DeviceTendNs     uint64 `json:"device_tend_ns,omitempty"`
	DeviceTfirstTxNs uint64 `json:"device_tfirst_tx_ns,omitempty"`
	DeviceTlastTxNs  uint64 `json:"device_tlast_tx_ns,omitempty"`

	// TCP transport diagnostics, sampled periodically by RemoteRunner when
	// the adapter connection is a TCP socket (zero/omitted over the
	// spawned-child AF_UNIX transport or an unsupported platform).
	TCPRTTNs         uint64 `json:"tcp_rtt_ns,omitempty"`
	TCPRetransmits   uint32 `json:"tcp_retransmits,omitempty"`
	TCPTotalRetrans  uint32 `json:"tcp_total_retrans,omitempty"`
}

// ErrorRecord is written once when a fatal error aborts the run, tagged by
// its cortexerr.Kind (§7: "the scheduler writes a final telemetry error
// record tagged by kind before exit").
type ErrorRecord struct {
	Type        string `json:"_type"` // always "error"
	Kind        string `json:"kind"`
	Op          string `json:"op"`
	Message     string `json:"message"`
	WindowIndex uint64 `json:"window_index,omitempty"`
}
