// Package metrics exposes the pipeline's Prometheus counters and
// gauges.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"satreceiver/internal/logging"
)

var (
	FramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_frames_total",
		Help: "Total link frames accepted by the frame parser.",
	})
	FramesDropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receiver_frames_dropped_total",
		Help: "Link frames dropped, labeled by drop reason.",
	}, []string{"reason"})
	BlocksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_blocks_total",
		Help: "Total file-service blocks admitted into an assembly.",
	})
	BlocksIntegrityFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_blocks_integrity_failed_total",
		Help: "Blocks dropped for failing the inner CRC check.",
	})
	BlocksConflicting = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_blocks_conflicting_total",
		Help: "Blocks that arrived with the same index but a different payload.",
	})
	FECRecoveredBlocks = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_fec_recovered_blocks_total",
		Help: "Systematic blocks recovered by the LDPC/RS decoder.",
	})
	FilesCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_files_completed_total",
		Help: "Files successfully reassembled and emitted.",
	})
	AssembliesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "receiver_assemblies_active",
		Help: "Number of in-flight (carousel, file) assemblies.",
	})
	AssembliesEvicted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_assemblies_evicted_total",
		Help: "Assemblies evicted for exceeding the configured cap or age-out interval.",
	})
	OrphanBlocksDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "receiver_orphan_blocks_dropped_total",
		Help: "Orphan blocks evicted from the bounded orphan buffer before their announcement arrived.",
	})
	UnknownServiceTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "receiver_unknown_service_total",
		Help: "Frames routed to a service id with no registered handler, labeled by service id.",
	}, []string{"service_id"})
)

func init() {
	prometheus.MustRegister(
		FramesTotal, FramesDropped, BlocksTotal, BlocksIntegrityFailed,
		BlocksConflicting, FECRecoveredBlocks, FilesCompleted,
		AssembliesActive, AssembliesEvicted, OrphanBlocksDropped, UnknownServiceTotal,
	)
}

// Serve starts the Prometheus HTTP endpoint on addr in the background;
// a listen error is logged rather than fatal.
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		logging.Info("prometheus: listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Error("prometheus serve error: %v", err)
		}
	}()
}
