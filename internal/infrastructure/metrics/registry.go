// Package metrics exposes Prometheus metrics for HTTP traffic, the database
// pool and billing activity.
package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Namespace prefixes every metric name
const Namespace = "shopbill"

// Registry owns the collectors of one process. A private registry keeps
// tests independent of the global default registerer.
type Registry struct {
	reg *prometheus.Registry
}

// NewRegistry creates a registry with the Go runtime and process collectors
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Registry{reg: reg}
}

// Registerer returns the underlying registerer
func (r *Registry) Registerer() prometheus.Registerer {
	return r.reg
}

// Gatherer returns the underlying gatherer
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.reg
}

// RegisterDB exports connection pool statistics of db
func (r *Registry) RegisterDB(db *sql.DB, name string) error {
	return r.reg.Register(collectors.NewDBStatsCollector(db, name))
}

// Handler serves the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}
