// Package metrics holds the Prometheus counters of an export run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record kinds used as the "kind" label of RecordsWritten.
const (
	KindTopLevel = "top_level"
	KindReply    = "reply"
)

// Metrics is a set of run counters registered on a private registry so
// several exporters (and tests) never collide.
type Metrics struct {
	Registry *prometheus.Registry

	PagesFetched   prometheus.Counter
	RecordsWritten *prometheus.CounterVec
	VideosExported prometheus.Counter
	Errors         *prometheus.CounterVec
	QuotaUnits     prometheus.Gauge
}

// New creates and registers the run metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		PagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytcomments_pages_fetched_total",
			Help: "Total number of commentThreads pages fetched",
		}),
		RecordsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytcomments_records_written_total",
				Help: "Total number of records appended to the sink",
			},
			[]string{"kind"},
		),
		VideosExported: factory.NewCounter(prometheus.CounterOpts{
			Name: "ytcomments_videos_exported_total",
			Help: "Total number of videos fully exported",
		}),
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ytcomments_errors_total",
				Help: "Total number of failed exports by error kind",
			},
			[]string{"kind"},
		),
		QuotaUnits: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ytcomments_quota_units_used",
			Help: "Estimated YouTube Data API quota units used by this run",
		}),
	}
}

// WriteTextfile writes the current values in the node-exporter textfile
// format. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry)
}
