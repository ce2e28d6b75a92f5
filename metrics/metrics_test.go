package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/grgbr/nlink/metrics"
)

// TestMetricsRegistered confirms every metric this package defines
// auto-registered with the default registry exactly once and gathers
// without error.
func TestMetricsRegistered(t *testing.T) {
	// A vector metric only shows up in a gather once it holds a child.
	metrics.SyscallTimeHistogram.WithLabelValues("send")
	metrics.ErrorCount.WithLabelValues("malformed")
	metrics.CacheUpdateCount.WithLabelValues("added")

	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather() = %v", err)
	}

	want := map[string]bool{
		"nlink_syscall_time_histogram":     false,
		"nlink_dump_latency_histogram":     false,
		"nlink_polling_interval_histogram": false,
		"nlink_interface_count_histogram":  false,
		"nlink_window_occupancy_histogram": false,
		"nlink_error_total":                false,
		"nlink_retry_total":                false,
		"nlink_cache_update_total":         false,
	}

	for _, f := range families {
		if _, ok := want[f.GetName()]; ok {
			want[f.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %q was not registered", name)
		}
	}
}
