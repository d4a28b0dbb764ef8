// Package telemetry exposes the daemon's prometheus metrics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the counters the inventory engine reports.
type Metrics struct {
	DetailFetches     prometheus.Counter
	DetailFetchErrors prometheus.Counter
	SourceEmissions   prometheus.Counter
	Searches          prometheus.Counter
}

// New registers the engine counters with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DetailFetches: factory.NewCounter(prometheus.CounterOpts{
			Name: "toolscope_detail_fetches_total",
			Help: "Tool detail hydration fetches issued.",
		}),
		DetailFetchErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "toolscope_detail_fetch_errors_total",
			Help: "Tool detail hydration fetches that failed.",
		}),
		SourceEmissions: factory.NewCounter(prometheus.CounterOpts{
			Name: "toolscope_source_emissions_total",
			Help: "Stabilized source list changes emitted.",
		}),
		Searches: factory.NewCounter(prometheus.CounterOpts{
			Name: "toolscope_searches_total",
			Help: "Search queries served.",
		}),
	}
}

// Nop returns metrics backed by a throwaway registry, for tests and for
// callers that do not scrape.
func Nop() *Metrics {
	return New(prometheus.NewRegistry())
}
