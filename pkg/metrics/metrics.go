package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics registers the core's Prometheus collectors. The embedding
// application decides whether and where to expose the handler.
type Metrics struct {
	registry *prometheus.Registry

	RecordsInserted *prometheus.CounterVec
	RecordErrors    *prometheus.CounterVec
	LoadRuns        prometheus.Counter
	Migrations      *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	recordsInserted := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulkload_records_inserted_total",
		Help: "Records inserted per table by the bulk loader",
	}, []string{"table"})

	recordErrors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulkload_record_errors_total",
		Help: "Per-record insert failures per table",
	}, []string{"table"})

	loadRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bulkload_runs_total",
		Help: "Bulk load runs started",
	})

	migrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schema_migrations_total",
		Help: "Schema migration runs by outcome",
	}, []string{"outcome"})

	registry.MustRegister(recordsInserted, recordErrors, loadRuns, migrations)

	return &Metrics{
		registry:        registry,
		RecordsInserted: recordsInserted,
		RecordErrors:    recordErrors,
		LoadRuns:        loadRuns,
		Migrations:      migrations,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for additional collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
