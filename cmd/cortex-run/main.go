// Command cortex-run is the harness entry point of §4: it replays a flat
// sample file through a windowing scheduler, dispatching each window to
// either the in-process identity kernel or a spawned cortex-adapter child,
// and writes one telemetry NDJSON file per run.
//
// Positional args: cortex-run <samples-file> <telemetry-out> <fs> <window>
// <hop> <channels> [adapter-binary [plugin.so]]
// A full YAML/CLI config surface is orchestration glue outside this
// module's scope (§1 Non-goals); this binary only takes the minimum
// positional args needed to drive one run.
package main

import (
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/westonvoglesonger/cortex/kernelabi"
	"github.com/westonvoglesonger/cortex/pacer"
	"github.com/westonvoglesonger/cortex/protocol"
	"github.com/westonvoglesonger/cortex/scheduler"
	"github.com/westonvoglesonger/cortex/shutdown"
	"github.com/westonvoglesonger/cortex/streamcfg"
	"github.com/westonvoglesonger/cortex/sysinfo"
	"github.com/westonvoglesonger/cortex/telemetry"
	"github.com/westonvoglesonger/cortex/transport"
)

// metricsAddr is the listen address for the live /metrics endpoint. Empty
// disables it; set via the CORTEX_METRICS_ADDR env var since a full CLI
// flag surface is orchestration glue outside this binary's scope.
func metricsAddr() string { return os.Getenv("CORTEX_METRICS_ADDR") }

func main() {
	log := logrus.NewEntry(logrus.StandardLogger())
	if err := run(os.Args[1:], log); err != nil {
		log.Fatalf("cortex-run: %v", err)
	}
}

func run(args []string, log *logrus.Entry) error {
	if len(args) < 6 {
		return fmt.Errorf("usage: cortex-run <samples-file> <telemetry-out> <fs> <window> <hop> <channels> [adapter-binary [plugin.so]]")
	}
	samplesPath, telemetryPath := args[0], args[1]
	fs, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("fs: %w", err)
	}
	window, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	hop, err := strconv.Atoi(args[4])
	if err != nil {
		return fmt.Errorf("hop: %w", err)
	}
	channels, err := strconv.Atoi(args[5])
	if err != nil {
		return fmt.Errorf("channels: %w", err)
	}

	cfg := streamcfg.Config{
		SampleRateHz:        uint32(fs),
		WindowLengthSamples: uint32(window),
		HopSamples:          uint32(hop),
		Channels:            uint32(channels),
		DType:               streamcfg.Float32,
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	sysInfo := sysinfo.Gather()
	sink, err := telemetry.Create(telemetryPath, sysInfo, log)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer sink.Close()

	coord := shutdown.New()
	defer coord.Stop()

	runID := xid.New()
	clock := scheduler.NewSystemClock()

	var runner scheduler.Runner
	var cleanup func()
	if len(args) >= 7 {
		runner, cleanup, err = dialAdapter(args[6], argOrEmpty(args, 7), cfg, clock, log)
	} else {
		runner, cleanup, err = inProcessRunner(cfg)
	}
	if err != nil {
		return err
	}
	defer cleanup()

	sched := scheduler.New(cfg, runIDUint64(runID), "cortex-run", runner, sink, clock, log)

	if addr := metricsAddr(); addr != "" {
		srv, err := serveMetrics(addr, runID.String(), log)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer srv.Close()
		sched.SetExporter(srv.exporter)
	}

	p, err := pacer.Open(samplesPath, cfg, func(data []float32, n int) {
		if !sched.Feed(data, n) {
			coord.Request()
		}
	}, coord, log)
	if err != nil {
		return fmt.Errorf("pacer: %w", err)
	}
	defer p.Close()

	if err := p.Run(); err != nil {
		return fmt.Errorf("pacer run: %w", err)
	}
	sched.Flush()
	return sched.FatalErr
}

// metricsServer bundles the live exporter with the http.Server exposing it,
// so the caller can defer a single Close.
type metricsServer struct {
	exporter *telemetry.Exporter
	http     *http.Server
}

func (m *metricsServer) Close() error { return m.http.Close() }

// serveMetrics registers a telemetry.Exporter labeled with runID on its own
// prometheus.Registry and serves it at /metrics on addr.
func serveMetrics(addr, runID string, log *logrus.Entry) (*metricsServer, error) {
	exp := telemetry.NewExporter("cortex-run", prometheus.Labels{"run_id": runID})
	reg := prometheus.NewRegistry()
	if err := reg.Register(exp); err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("metrics server stopped")
		}
	}()
	log.WithField("addr", addr).Info("serving /metrics")
	return &metricsServer{exporter: exp, http: srv}, nil
}

func argOrEmpty(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func runIDUint64(id xid.ID) uint64 {
	b := id.Bytes()
	var v uint64
	for _, c := range b {
		v = v*31 + uint64(c)
	}
	return v
}

func inProcessRunner(cfg streamcfg.Config) (scheduler.Runner, func(), error) {
	k := kernelabi.NewIdentityKernel()
	res, err := k.Init(kernelabi.Config{
		SampleRateHz:  cfg.SampleRateHz,
		WindowSamples: cfg.WindowLengthSamples,
		HopSamples:    cfg.HopSamples,
		Channels:      cfg.Channels,
		DType:         cfg.DType,
	})
	if err != nil {
		return nil, nil, err
	}
	windowBytes := int(res.OutputWindowSamples) * int(res.OutputChannels) * cfg.DType.Size()
	return scheduler.NewInProcessRunner(k, windowBytes), k.Teardown, nil
}

func dialAdapter(adapterBinary, pluginPath string, cfg streamcfg.Config, clock scheduler.Clock, log *logrus.Entry) (scheduler.Runner, func(), error) {
	var adapterArgs []string
	if pluginPath != "" {
		adapterArgs = append(adapterArgs, pluginPath)
	}
	local, err := transport.SpawnLocal(adapterBinary, adapterArgs...)
	if err != nil {
		return nil, nil, fmt.Errorf("spawn adapter: %w", err)
	}

	session := protocol.NewHostSession(local, scheduler.PingInterval)
	_, ack, err := session.Handshake(protocol.ConfigMsg{
		SpecURI:       "*",
		SampleRateHz:  cfg.SampleRateHz,
		WindowSamples: cfg.WindowLengthSamples,
		HopSamples:    cfg.HopSamples,
		Channels:      cfg.Channels,
		DType:         uint8(cfg.DType),
	}, scheduler.PingInterval)
	if err != nil {
		local.Close()
		return nil, nil, fmt.Errorf("adapter handshake: %w", err)
	}
	log.WithField("output_window_samples", ack.OutputWindowSamples).Info("adapter ready")

	cleanup := func() {
		_ = session.Bye()
		local.Close()
	}
	return scheduler.NewRemoteRunner(session, clock), cleanup, nil
}
