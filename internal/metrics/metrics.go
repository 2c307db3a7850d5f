// Package metrics provides Prometheus metrics for protodig batch runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed during a directory
// batch run, when started with --metrics-addr.
type Metrics struct {
	FilesScanned          prometheus.Counter
	FilesSkippedNonBinary *prometheus.CounterVec
	DescriptorsFound      prometheus.Counter
	DescriptorsDecoded    *prometheus.CounterVec
	DescriptorsWritten    *prometheus.CounterVec
	ScanDuration          prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.FilesScanned = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "protodig_files_scanned_total",
		Help: "Total number of candidate files examined during a directory walk",
	})

	m.FilesSkippedNonBinary = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protodig_files_skipped_total",
			Help: "Total number of files skipped before scanning, by reason",
		},
		[]string{"reason"},
	)

	m.DescriptorsFound = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "protodig_descriptors_found_total",
		Help: "Total number of candidate FileDescriptorProto byte ranges recovered by the scanner",
	})

	m.DescriptorsDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protodig_descriptors_decoded_total",
			Help: "Total number of recovered ranges that decoded as a valid descriptor, by outcome",
		},
		[]string{"outcome"},
	)

	m.DescriptorsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "protodig_descriptors_written_total",
			Help: "Total number of reconstructed .proto files written, by outcome",
		},
		[]string{"outcome"},
	)

	m.ScanDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "protodig_scan_duration_seconds",
		Help:    "Time spent scanning a single file for embedded descriptors",
		Buckets: prometheus.DefBuckets,
	})

	m.registry.MustRegister(
		m.FilesScanned,
		m.FilesSkippedNonBinary,
		m.DescriptorsFound,
		m.DescriptorsDecoded,
		m.DescriptorsWritten,
		m.ScanDuration,
	)

	m.registry.MustRegister(prometheus.NewGoCollector())
	m.registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	return m
}

// Handler returns an HTTP handler serving the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Serve starts a background HTTP server exposing the /metrics endpoint on
// addr. It returns immediately; the caller is responsible for the
// lifetime of the run (the server is not gracefully shut down, matching
// the batch-tool usage pattern of a short-lived metrics exporter).
func (m *Metrics) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = srv.ListenAndServe()
	}()
	return nil
}

// RecordFileSkipped records that a candidate path was excluded from
// scanning, tagged with the reason (e.g. "non-binary", "too-small").
func (m *Metrics) RecordFileSkipped(reason string) {
	m.FilesSkippedNonBinary.WithLabelValues(reason).Inc()
}

// RecordDescriptorDecode records the outcome of decoding one recovered
// byte range as a FileDescriptorProto: "ok" or "invalid".
func (m *Metrics) RecordDescriptorDecode(ok bool) {
	outcome := "ok"
	if !ok {
		outcome = "invalid"
	}
	m.DescriptorsDecoded.WithLabelValues(outcome).Inc()
}

// RecordWrite records the outcome of handling a reconstructed .proto file.
// The CLI passes "written", "skipped" (an exact duplicate, or a conflict
// dropped by skip-conflicts) or "error".
func (m *Metrics) RecordWrite(outcome string) {
	m.DescriptorsWritten.WithLabelValues(outcome).Inc()
}

// ObserveScanDuration records how long Scan took for a single input.
func (m *Metrics) ObserveScanDuration(d time.Duration) {
	m.ScanDuration.Observe(d.Seconds())
}
