// Package metrics defines the prometheus metrics used to add accounting
// to various parts of the pipeline.
//
// When defining new operations or metrics, these are helpful values to track:
//  - things coming into or go out of the system: requests, files, tests, api calls.
//  - the success or error status of any of the above.
//  - the distribution of processing latency.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SyscallTimeHistogram tracks the latency of a single send or recv
	// syscall on the netlink routing socket. It does NOT include the
	// time to classify or decode the messages read.
	SyscallTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "nlink_syscall_time_histogram",
			Help: "netlink syscall latency distribution (seconds)",
			Buckets: []float64{
				0.001, 0.00125, 0.0016, 0.002, 0.0025, 0.0032, 0.004, 0.005, 0.0063, 0.0079,
				0.01, 0.0125, 0.016, 0.02, 0.025, 0.032, 0.04, 0.05, 0.063, 0.079,
				0.1, 0.125, 0.16, 0.2,
			},
		},
		[]string{"op"}) // op: "send" or "recv"

	// DumpLatencyHistogram tracks wall-clock time from issuing a dump
	// request to observing its terminating NLMSG_DONE/ACK.
	DumpLatencyHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlink_dump_latency_histogram",
			Help:    "link dump round-trip latency distribution (seconds)",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 16),
		},
	)

	// PollingIntervalHistogram tracks the interval between successive
	// poller cycles.
	PollingIntervalHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlink_polling_interval_histogram",
			Help:    "poller cycle interval distribution (seconds)",
			Buckets: prometheus.LinearBuckets(0, .5, 20),
		},
	)

	// InterfaceCountHistogram tracks the number of link records returned
	// by a single dump.
	InterfaceCountHistogram = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "nlink_interface_count_histogram",
			Help: "interfaces observed per dump histogram",
			Buckets: []float64{
				1, 2, 3, 4, 5, 6, 8,
				10, 12.5, 16, 20, 25, 32, 40, 50, 63, 79,
				100, 125, 160, 200, 250, 320, 400, 500,
			},
		})

	// WindowOccupancy tracks how many of the in-flight request window's
	// slots are occupied at the moment each dump request is scheduled.
	WindowOccupancy = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nlink_window_occupancy_histogram",
			Help:    "in-flight request window occupancy at schedule time",
			Buckets: prometheus.LinearBuckets(0, 1, 16),
		},
	)

	// ErrorCount measures the number of errors encountered, broken down
	// by the taxonomy kind (malformed, overrun, errorcode, interrupted,
	// transport).
	//
	// Example usage:
	//    metrics.ErrorCount.With(prometheus.Labels{"kind": "overrun"}).Inc()
	ErrorCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlink_error_total",
			Help: "The total number of errors encountered, by kind.",
		}, []string{"kind"})

	// RetryCount counts dump requests retried after an Overrun or
	// Interrupted outcome.
	RetryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nlink_retry_total",
			Help: "Number of dump requests retried after overrun or interruption.",
		},
	)

	// CacheUpdateCount counts link-cache entries created, changed, or
	// removed across poller cycles.
	//
	// Example usage:
	//   metrics.CacheUpdateCount.With(prometheus.Labels{"change": "added"}).Inc()
	CacheUpdateCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nlink_cache_update_total",
			Help: "Number of link-cache entries added, changed, or removed.",
		}, []string{"change"})
)

// init() prints a log message to let the user know that the package has been
// loaded and the metrics registered. The metrics are auto-registered, which
// means they are registered as soon as this package is loaded, and the exact
// time this occurs (and whether this occurs at all in a given context) can be
// opaque.
func init() {
	log.Println("Prometheus metrics in nlink.metrics are registered.")
}
