// Package metrics exposes Prometheus counters for the tally engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	entriesRecorded      *prometheus.CounterVec
	confirmations        *prometheus.CounterVec
	submissionRejections *prometheus.CounterVec
	pagesBuilt           prometheus.Counter
	rpcDuration          *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry along with the Go and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		entriesRecorded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_entries_recorded_total",
			Help: "Log entries created, by role and category.",
		}, []string{"role", "category"}),
		confirmations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_confirmations_total",
			Help: "Submissions that needed operator confirmation, by verdict.",
		}, []string{"verdict"}),
		submissionRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tally_submission_rejections_total",
			Help: "Submissions rejected before any entry was created, by error code.",
		}, []string{"code"}),
		pagesBuilt: f.NewCounter(prometheus.CounterOpts{
			Name: "tally_sheet_pages_built_total",
			Help: "Tally sheet pages laid out for export.",
		}),
		rpcDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tally_rpc_duration_seconds",
			Help:    "RPC handling time, by procedure.",
			Buckets: prometheus.DefBuckets,
		}, []string{"procedure"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) EntriesRecorded(role, category string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entriesRecorded.WithLabelValues(role, category).Add(float64(n))
}

func (m *Metrics) ConfirmationRequired(verdict string) {
	if m == nil {
		return
	}
	m.confirmations.WithLabelValues(verdict).Inc()
}

func (m *Metrics) SubmissionRejected(code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "UNKNOWN"
	}
	m.submissionRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) PagesBuilt(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pagesBuilt.Add(float64(n))
}

func (m *Metrics) ObserveRPC(procedure string, d time.Duration) {
	if m == nil {
		return
	}
	m.rpcDuration.WithLabelValues(procedure).Observe(d.Seconds())
}
