package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// PositionRequests counts positioning requests by final outcome
	PositionRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifipos",
			Name:      "position_requests_total",
			Help:      "Total number of positioning requests by outcome",
		},
		[]string{"outcome"},
	)

	// AlgorithmRuns counts per-algorithm computations and their results
	AlgorithmRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifipos",
			Name:      "algorithm_runs_total",
			Help:      "Total number of algorithm computations by result",
		},
		[]string{"algorithm", "result"},
	)

	// AlgorithmDuration observes per-algorithm computation latency
	AlgorithmDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wifipos",
			Name:      "algorithm_duration_seconds",
			Help:      "Per-algorithm computation latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"algorithm"},
	)

	// BatchesFlushed counts ingestion batch flushes by trigger
	BatchesFlushed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifipos",
			Name:      "batches_flushed_total",
			Help:      "Total number of ingestion batches flushed by trigger",
		},
		[]string{"trigger"},
	)

	// RecordsDelivered counts individual records by delivery result
	RecordsDelivered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifipos",
			Name:      "records_delivered_total",
			Help:      "Total number of records delivered to the sink by result",
		},
		[]string{"result"},
	)

	// SinkRetries counts delivery retries by failure class
	SinkRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifipos",
			Name:      "sink_retries_total",
			Help:      "Total number of sink delivery retries by failure class",
		},
		[]string{"class"},
	)

	// DeliveryFailures counts batches abandoned after exhausting retries
	DeliveryFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wifipos",
			Name:      "delivery_failures_total",
			Help:      "Total number of batches abandoned after exhausting retries",
		},
		[]string{"class"},
	)

	// BatchDeliveryDuration observes end-to-end batch delivery latency
	// including retries
	BatchDeliveryDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "wifipos",
			Name:      "batch_delivery_duration_seconds",
			Help:      "End-to-end batch delivery latency including retries",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 15, 60, 300},
		},
	)

	// BatchesInFlight tracks batches currently being delivered
	BatchesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wifipos",
			Name:      "batches_in_flight",
			Help:      "Number of batches currently being delivered",
		},
	)

	// AccumulatedBytes tracks bytes pending in partition accumulators
	AccumulatedBytes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "wifipos",
			Name:      "accumulated_bytes",
			Help:      "Bytes pending in partition accumulators",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		// This prevents panics when metrics are already in the registry
		prometheus.DefaultRegisterer.Register(PositionRequests)
		prometheus.DefaultRegisterer.Register(AlgorithmRuns)
		prometheus.DefaultRegisterer.Register(AlgorithmDuration)
		prometheus.DefaultRegisterer.Register(BatchesFlushed)
		prometheus.DefaultRegisterer.Register(RecordsDelivered)
		prometheus.DefaultRegisterer.Register(SinkRetries)
		prometheus.DefaultRegisterer.Register(DeliveryFailures)
		prometheus.DefaultRegisterer.Register(BatchDeliveryDuration)
		prometheus.DefaultRegisterer.Register(BatchesInFlight)
		prometheus.DefaultRegisterer.Register(AccumulatedBytes)
	})
}
