package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Exporter is a live Prometheus collector mirroring the sink's window rows:
// total windows dispatched, deadline misses, and the most recent
// release/end timestamps (no deadline timestamp is exported). It is purely additive and read-only with
// respect to the newline-delimited file format of §6.3.
type Exporter struct {
	mu sync.Mutex

	pluginName string
	constLabels prometheus.Labels

	windowsDesc        *prometheus.Desc
	deadlineMissesDesc *prometheus.Desc
	lastReleaseDesc    *prometheus.Desc
	lastEndDesc        *prometheus.Desc

	windows        uint64
	deadlineMisses uint64
	lastReleaseNs  uint64
	lastEndNs      uint64
}

// NewExporter builds a collector labeled with pluginName and any constant
// labels (e.g. run_id, hostname).
func NewExporter(pluginName string, constLabels prometheus.Labels) *Exporter {
	return &Exporter{
		pluginName:  pluginName,
		constLabels: constLabels,
		windowsDesc: prometheus.NewDesc(
			"cortex_windows_total", "Total windows dispatched to the kernel.",
			nil, constLabels),
		deadlineMissesDesc: prometheus.NewDesc(
			"cortex_deadline_misses_total", "Total windows whose processing missed its deadline.",
			nil, constLabels),
		lastReleaseDesc: prometheus.NewDesc(
			"cortex_last_release_ts_ns", "Host monotonic timestamp of the most recently released window.",
			nil, constLabels),
		lastEndDesc: prometheus.NewDesc(
			"cortex_last_end_ts_ns", "Host monotonic timestamp at which the most recent window's dispatch returned.",
			nil, constLabels),
	}
}

// Observe records one completed window's telemetry for export.
func (e *Exporter) Observe(row WindowRow) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.windows++
	if row.DeadlineMissed {
		e.deadlineMisses++
	}
	e.lastReleaseNs = row.ReleaseTSNs
	e.lastEndNs = row.EndTSNs
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(descs chan<- *prometheus.Desc) {
	descs <- e.windowsDesc
	descs <- e.deadlineMissesDesc
	descs <- e.lastReleaseDesc
	descs <- e.lastEndDesc
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(metrics chan<- prometheus.Metric) {
	e.mu.Lock()
	defer e.mu.Unlock()
	metrics <- prometheus.MustNewConstMetric(e.windowsDesc, prometheus.CounterValue, float64(e.windows))
	metrics <- prometheus.MustNewConstMetric(e.deadlineMissesDesc, prometheus.CounterValue, float64(e.deadlineMisses))
	metrics <- prometheus.MustNewConstMetric(e.lastReleaseDesc, prometheus.GaugeValue, float64(e.lastReleaseNs))
	metrics <- prometheus.MustNewConstMetric(e.lastEndDesc, prometheus.GaugeValue, float64(e.lastEndNs))
}
