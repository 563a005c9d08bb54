// Package metrics records per-run counters and writes them as a Prometheus
// textfile for node_exporter's textfile collector.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rshade/kwvolume/internal/engine/batch"
	"github.com/rshade/kwvolume/internal/kwapi"
)

const namespace = "kwvolume"

// Recorder collects metrics for one run on its own registry.
type Recorder struct {
	registry *prometheus.Registry

	batches         prometheus.Counter
	keywords        prometheus.Counter
	requestDuration prometheus.Histogram
	rowsUpdated     prometheus.Gauge
	credits         prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Keyword data requests completed successfully.",
		}),
		keywords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keywords_requested_total",
			Help:      "Keywords sent to the keyword data API.",
		}),
		requestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Round-trip time of keyword data requests.",
			Buckets:   prometheus.DefBuckets,
		}),
		rowsUpdated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_updated",
			Help:      "Rows that received a search volume in the last run.",
		}),
		credits: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "credits_remaining",
			Help:      "Credit balance reported by the last response.",
		}),
	}
	r.registry.MustRegister(r.batches, r.keywords, r.requestDuration, r.rowsUpdated, r.credits)
	return r
}

// BatchStarted does nothing; only completed batches are counted.
func (r *Recorder) BatchStarted(int, int) {}

// BatchFetched records one completed request.
func (r *Recorder) BatchFetched(_ batch.ProgressSnapshot, keywords []string, result *kwapi.BatchResult) {
	r.batches.Inc()
	r.keywords.Add(float64(len(keywords)))
	r.requestDuration.Observe(result.Duration.Seconds())
	if result.Credits != nil {
		r.credits.Set(float64(*result.Credits))
	}
}

// SetRowsUpdated records how many rows received a volume.
func (r *Recorder) SetRowsUpdated(n int) {
	r.rowsUpdated.Set(float64(n))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
