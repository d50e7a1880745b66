package metrics

import (
	"net/http"
	"time"

	"cattle-auction-service/internal/ports/outbound"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cattle_auction"

// PrometheusRecorder exports handler measurements on its own registry
type PrometheusRecorder struct {
	registry     *prometheus.Registry
	operations   *prometheus.CounterVec
	persistTime  prometheus.Histogram
	persistFails prometheus.Counter
	lots         prometheus.Gauge
	openLots     prometheus.Gauge
	participants prometheus.Gauge
}

var _ outbound.Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder creates the collectors and registers them together
// with the Go runtime and process collectors
func NewPrometheusRecorder() *PrometheusRecorder {
	r := &PrometheusRecorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Auction handler operations by name and outcome.",
		}, []string{"operation", "outcome"}),
		persistTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "snapshot_write_seconds",
			Help:      "Time spent writing the lot snapshot.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 14),
		}),
		persistFails: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_write_failures_total",
			Help:      "Snapshot writes that failed; in-memory state was kept.",
		}),
		lots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lots",
			Help:      "Lots currently in the registry.",
		}),
		openLots: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_lots",
			Help:      "Lots accepting bids.",
		}),
		participants: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "participants",
			Help:      "Connected participant names.",
		}),
	}

	r.registry.MustRegister(
		r.operations,
		r.persistTime,
		r.persistFails,
		r.lots,
		r.openLots,
		r.participants,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

func (r *PrometheusRecorder) ObserveOperation(operation, outcome string) {
	r.operations.WithLabelValues(operation, outcome).Inc()
}

func (r *PrometheusRecorder) ObservePersist(duration time.Duration, err error) {
	r.persistTime.Observe(duration.Seconds())
	if err != nil {
		r.persistFails.Inc()
	}
}

func (r *PrometheusRecorder) SetState(lots, openLots, participants int) {
	r.lots.Set(float64(lots))
	r.openLots.Set(float64(openLots))
	r.participants.Set(float64(participants))
}

// Handler serves the registry in the Prometheus exposition format
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry
func (r *PrometheusRecorder) Registry() *prometheus.Registry {
	return r.registry
}
