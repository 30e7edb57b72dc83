package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "settle"

// File outcomes recorded by FileProcessed.
const (
	StatusLoaded  = "loaded"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Metrics holds the ingest collectors.
type Metrics struct {
	files         *prometheus.CounterVec
	sections      *prometheus.CounterVec
	rows          prometheus.Counter
	parseDuration prometheus.Histogram
	rowsWritten   prometheus.Counter
	exports       *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Settlement files processed, by outcome.",
		}, []string{"status"}),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sections_total",
			Help:      "Product sections decoded, by kind.",
		}, []string{"kind"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Settlement rows decoded.",
		}),
		parseDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time to decode one settlement file.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_written_total",
			Help:      "Settlement rows inserted into the database.",
		}),
		exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export objects written, by format.",
		}, []string{"format"}),
	}
	if reg != nil {
		reg.MustRegister(m.files, m.sections, m.rows, m.parseDuration, m.rowsWritten, m.exports)
	}
	return m
}

// FileProcessed counts a file by outcome.
func (m *Metrics) FileProcessed(status string) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(status).Inc()
}

// Section counts a decoded section.
func (m *Metrics) Section(kind string, rows int) {
	if m == nil {
		return
	}
	m.sections.WithLabelValues(kind).Inc()
	m.rows.Add(float64(rows))
}

// ParseDuration observes the time spent decoding a file.
func (m *Metrics) ParseDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.parseDuration.Observe(d.Seconds())
}

// RowsWritten counts rows inserted into the database.
func (m *Metrics) RowsWritten(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.rowsWritten.Add(float64(n))
}

// Export counts one written export object.
func (m *Metrics) Export(format string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(format).Inc()
}

// Handler serves the metrics in g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
