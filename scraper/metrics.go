package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the scraper.
type Metrics struct {
	Registry              *prometheus.Registry
	PagesTotal            *prometheus.CounterVec
	FetchDuration         prometheus.Histogram
	RecordsExtractedTotal prometheus.Counter
	ErrorsTotal           *prometheus.CounterVec
	RunsTotal             *prometheus.CounterVec
	LastRunRecords        prometheus.Gauge
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_pages_total",
			Help: "Catalogue pages processed, by outcome.",
		},
		[]string{"outcome"},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Latency of catalogue page fetches.",
			Buckets: prometheus.DefBuckets,
		},
	)
	records := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_records_extracted_total",
			Help: "Total number of records added to the catalog.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of scraper errors by type.",
		},
		[]string{"error_type"},
	)
	runs := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_runs_total",
			Help: "Completed scrape runs by final state and reason.",
		},
		[]string{"state", "reason"},
	)
	lastRun := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scraper_last_run_records",
			Help: "Number of records collected by the most recent run.",
		},
	)

	registry.MustRegister(pages, fetchDuration, records, errorsTotal, runs, lastRun)

	return &Metrics{
		Registry:              registry,
		PagesTotal:            pages,
		FetchDuration:         fetchDuration,
		RecordsExtractedTotal: records,
		ErrorsTotal:           errorsTotal,
		RunsTotal:             runs,
		LastRunRecords:        lastRun,
	}
}

// IncPage increments the pages counter for an outcome.
func (m *Metrics) IncPage(outcome string) {
	if m == nil {
		return
	}
	m.PagesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetch records a fetch duration.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// AddRecords increments the extracted records counter.
func (m *Metrics) AddRecords(n int) {
	if m == nil {
		return
	}
	m.RecordsExtractedTotal.Add(float64(n))
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// ObserveRun records the end of a run.
func (m *Metrics) ObserveRun(state, reason string, records int) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(state, reason).Inc()
	m.LastRunRecords.Set(float64(records))
}
